package imagejob

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DeliveryItem is the single-page callback shape: one variant for one page.
type DeliveryItem struct {
	PageIndex int    `json:"page_index"`
	URL       string `json:"url"`
	Model     string `json:"model"`
}

// bulkEntry is one value of the bulk callback shape.
type bulkEntry struct {
	Variants []Variant `json:"variants"`
}

// ApplyDelivery merges one callback body into the job. The engine may send
// any of three shapes, and an object body may carry the bulk and
// single-page shapes at once; each is applied independently:
//
//   - a top-level array of {page_index, url, model}: each item appended
//   - object keys that are page-index strings, mapping to {variants}: the
//     page's variant list is replaced wholesale for those indices
//   - object keys page_index/url/model: one variant appended
//
// Every shape present is parsed in full before the job is touched, then
// applied and derived fields recomputed. The merge never fails on
// unknown extra keys; only an unparseable body is an error, and in that
// case the job is left untouched.
func ApplyDelivery(j *Job, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty callback body")
	}

	if trimmed[0] == '[' {
		var items []DeliveryItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("failed to parse callback items: %w", err)
		}
		for _, it := range items {
			j.AppendVariant(it.PageIndex, Variant{URL: it.URL, Model: it.Model})
		}
		j.Recompute()
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("failed to parse callback body: %w", err)
	}

	// Bulk shape: every key that looks like a page index replaces that
	// page's entry. Parsed up front so a bad entry, or a bad single-page
	// shape below, rejects the whole body without a partial merge.
	type pageReplace struct {
		key      string
		variants []Variant
	}
	var replaces []pageReplace
	for key, raw := range fields {
		if !isPageIndexKey(key) {
			continue
		}
		var entry bulkEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("failed to parse bulk entry for page %s: %w", key, err)
		}
		replaces = append(replaces, pageReplace{key: key, variants: entry.Variants})
	}

	// Single-page shape, carried alongside any bulk keys present.
	var single *DeliveryItem
	if _, ok := fields["page_index"]; ok {
		var item DeliveryItem
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return fmt.Errorf("failed to parse single-page delivery: %w", err)
		}
		single = &item
	}

	for _, r := range replaces {
		j.ReplacePage(r.key, r.variants)
	}
	if single != nil {
		j.AppendVariant(single.PageIndex, Variant{URL: single.URL, Model: single.Model})
	}

	j.Recompute()
	return nil
}

// isPageIndexKey reports whether a JSON object key is a non-negative
// integer string, i.e. a bulk-shape page index.
func isPageIndexKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
