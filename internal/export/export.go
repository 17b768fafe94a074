// Package export assembles finished books into deliverable artifacts: a
// JSON document with the full book contents and a PDF built from the
// generated page images.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/home"
)

// Result describes the artifacts produced by one export.
type Result struct {
	BookID    string `json:"book_id"`
	JSONPath  string `json:"json_path"`
	PDFPath   string `json:"pdf_path,omitempty"`
	PageCount int    `json:"page_count"`
	Skipped   int    `json:"skipped_pages,omitempty"` // pages without a usable image
}

// Exporter writes export artifacts under the home exports directory.
type Exporter struct {
	home       *home.Dir
	logger     *slog.Logger
	httpClient *http.Client
}

// NewExporter creates an exporter rooted at the given home directory.
func NewExporter(h *home.Dir, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		home:   h,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Options controls export behavior.
type Options struct {
	// PreferredModel selects which image variant to use when a page has
	// several. Empty means the first variant wins.
	PreferredModel string
	// SkipPDF exports only the JSON document.
	SkipPDF bool
}

// Export writes the JSON document and, unless skipped, downloads page
// images and assembles them into a PDF. Pages without images are skipped
// rather than failing the whole export.
func (e *Exporter) Export(ctx context.Context, b *book.Book, opts Options) (*Result, error) {
	dir := filepath.Join(e.home.ExportsPath(), b.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	result := &Result{BookID: b.ID, PageCount: len(b.Pages)}

	jsonPath := filepath.Join(dir, "book.json")
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal book: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write book.json: %w", err)
	}
	result.JSONPath = jsonPath

	if opts.SkipPDF {
		return result, nil
	}

	imgFiles, skipped, err := e.downloadPageImages(ctx, b, dir, opts.PreferredModel)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped
	if len(imgFiles) == 0 {
		return nil, fmt.Errorf("no page images available; run the images stage first")
	}

	pdfPath := filepath.Join(dir, "book.pdf")
	if err := api.ImportImagesFile(imgFiles, pdfPath, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to assemble PDF: %w", err)
	}
	result.PDFPath = pdfPath

	e.logger.Info("book exported",
		"book_id", b.ID,
		"pages", len(imgFiles),
		"skipped", skipped,
		"pdf", pdfPath)
	return result, nil
}

// PDFPath returns the location of a previously exported PDF, or an error
// if no export exists.
func (e *Exporter) PDFPath(bookID string) (string, error) {
	p := filepath.Join(e.home.ExportsPath(), bookID, "book.pdf")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("no exported PDF for book %s", bookID)
	}
	return p, nil
}

// downloadPageImages fetches one image per page into the export
// directory, in page order. Returns the local file paths.
func (e *Exporter) downloadPageImages(ctx context.Context, b *book.Book, dir, preferredModel string) ([]string, int, error) {
	pagesDir := filepath.Join(dir, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("failed to create pages directory: %w", err)
	}

	pages := make([]book.Page, len(b.Pages))
	copy(pages, b.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var files []string
	skipped := 0
	for _, p := range pages {
		variant := pickVariant(p.Images, preferredModel)
		if variant == nil {
			e.logger.Warn("page has no image, skipping", "book_id", b.ID, "page", p.Index)
			skipped++
			continue
		}

		dest := filepath.Join(pagesDir, fmt.Sprintf("page-%03d%s", p.Index, urlExt(variant.URL)))
		if err := e.download(ctx, variant.URL, dest); err != nil {
			return nil, 0, fmt.Errorf("failed to download image for page %d: %w", p.Index, err)
		}
		files = append(files, dest)
	}
	return files, skipped, nil
}

// pickVariant chooses a page's image. The preferred model wins when
// present; otherwise the first variant.
func pickVariant(images []book.ImageVariant, preferredModel string) *book.ImageVariant {
	if len(images) == 0 {
		return nil
	}
	if preferredModel != "" {
		for i := range images {
			if images[i].Model == preferredModel {
				return &images[i]
			}
		}
	}
	return &images[0]
}

// download fetches a URL to a local file, retrying transient failures.
func (e *Exporter) download(ctx context.Context, url, dest string) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := e.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}

			f, err := os.Create(dest)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			defer f.Close()

			_, err = io.Copy(f, resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// urlExt extracts a usable image extension from a URL, defaulting to .png.
func urlExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch ext := strings.ToLower(filepath.Ext(url)); ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	default:
		return ".png"
	}
}
