package imagejob

import "testing"

func TestApplyDelivery(t *testing.T) {
	t.Run("bulk shape replaces per index", func(t *testing.T) {
		job := NewJob("j1", 2)
		job.AppendVariant(0, Variant{URL: "https://img/old", Model: "m"})

		body := []byte(`{
			"0": {"variants": [{"url": "https://img/new", "model": "m"}]},
			"1": {"variants": [{"url": "https://img/one", "model": "m"}]}
		}`)
		if err := ApplyDelivery(job, body); err != nil {
			t.Fatalf("ApplyDelivery() error = %v", err)
		}

		if got := job.Results["0"].Variants; len(got) != 1 || got[0].URL != "https://img/new" {
			t.Errorf("page 0 not replaced: %+v", got)
		}
		if job.Status != StatusDone {
			t.Errorf("Status = %s, want done", job.Status)
		}
		if job.CompletedPages != 2 {
			t.Errorf("CompletedPages = %d, want 2", job.CompletedPages)
		}
	})

	t.Run("single-page shape appends", func(t *testing.T) {
		job := NewJob("j2", 3)
		body := []byte(`{"page_index": 1, "url": "https://img/a", "model": "flux"}`)

		if err := ApplyDelivery(job, body); err != nil {
			t.Fatalf("ApplyDelivery() error = %v", err)
		}
		if err := ApplyDelivery(job, body); err != nil {
			t.Fatalf("second ApplyDelivery() error = %v", err)
		}

		// Appends, not replaces: duplicates are possible.
		if got := len(job.Results["1"].Variants); got != 2 {
			t.Errorf("variants = %d, want 2", got)
		}
		if job.CompletedPages != 1 {
			t.Errorf("CompletedPages = %d, want 1", job.CompletedPages)
		}
	})

	t.Run("array shape appends each item", func(t *testing.T) {
		job := NewJob("j3", 2)
		body := []byte(`[
			{"page_index": 0, "url": "https://img/0", "model": "flux"},
			{"page_index": 1, "url": "https://img/1", "model": "flux"}
		]`)

		if err := ApplyDelivery(job, body); err != nil {
			t.Fatalf("ApplyDelivery() error = %v", err)
		}
		if job.Status != StatusDone {
			t.Errorf("Status = %s, want done", job.Status)
		}
	})

	t.Run("bulk and single shapes in one body apply independently", func(t *testing.T) {
		job := NewJob("j4", 3)
		body := []byte(`{
			"0": {"variants": [{"url": "https://img/bulk", "model": "m"}]},
			"page_index": 2, "url": "https://img/single", "model": "m"
		}`)

		if err := ApplyDelivery(job, body); err != nil {
			t.Fatalf("ApplyDelivery() error = %v", err)
		}

		if _, ok := job.Results["0"]; !ok {
			t.Error("bulk entry missing")
		}
		if got := job.Results["2"].Variants; len(got) != 1 || got[0].URL != "https://img/single" {
			t.Errorf("single entry wrong: %+v", got)
		}
		if job.CompletedPages != 2 {
			t.Errorf("CompletedPages = %d, want 2", job.CompletedPages)
		}
	})

	t.Run("valid bulk entry with bad single shape leaves job untouched", func(t *testing.T) {
		job := NewJob("j7", 1)
		body := []byte(`{
			"0": {"variants": [{"url": "https://img/0", "model": "m"}]},
			"page_index": "oops"
		}`)

		if err := ApplyDelivery(job, body); err == nil {
			t.Fatal("expected error for bad page_index")
		}
		if len(job.Results) != 0 {
			t.Errorf("Results = %v, want empty", job.Results)
		}
		if job.CompletedPages != 0 {
			t.Errorf("CompletedPages = %d, want 0", job.CompletedPages)
		}
		if job.Status != StatusProcessing {
			t.Errorf("Status = %s, want processing", job.Status)
		}
	})

	t.Run("malformed body errors and leaves job untouched", func(t *testing.T) {
		job := NewJob("j5", 1)
		if err := ApplyDelivery(job, []byte(`not json`)); err == nil {
			t.Fatal("expected error for malformed body")
		}
		if len(job.Results) != 0 {
			t.Errorf("Results = %v, want empty", job.Results)
		}
	})

	t.Run("empty body errors", func(t *testing.T) {
		job := NewJob("j6", 1)
		if err := ApplyDelivery(job, []byte("  ")); err == nil {
			t.Fatal("expected error for empty body")
		}
	})
}

func TestIsPageIndexKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"0", true},
		{"12", true},
		{"", false},
		{"page_index", false},
		{"-1", false},
		{"1a", false},
	}
	for _, tc := range cases {
		if got := isPageIndexKey(tc.key); got != tc.want {
			t.Errorf("isPageIndexKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}
