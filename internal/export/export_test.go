package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/home"
)

func testHome(t *testing.T) *home.Dir {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	return h
}

// pngBytes renders a small solid-color PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExportJSONOnly(t *testing.T) {
	e := NewExporter(testHome(t), nil)
	b := &book.Book{
		ID:    "b1",
		Title: "The Brave Snail",
		Pages: []book.Page{{Index: 0, Text: "Sid woke up."}},
	}

	res, err := e.Export(context.Background(), b, Options{SkipPDF: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.PDFPath != "" {
		t.Error("PDF produced despite SkipPDF")
	}
	data, err := os.ReadFile(res.JSONPath)
	if err != nil {
		t.Fatalf("read book.json: %v", err)
	}
	if !bytes.Contains(data, []byte("Sid woke up.")) {
		t.Error("book.json missing page text")
	}
}

func TestExportPDF(t *testing.T) {
	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(img)
	}))
	defer srv.Close()

	e := NewExporter(testHome(t), nil)
	b := &book.Book{
		ID: "b2",
		Pages: []book.Page{
			{Index: 1, Images: []book.ImageVariant{{URL: srv.URL + "/p1.png", Model: "flux-schnell"}}},
			{Index: 0, Images: []book.ImageVariant{{URL: srv.URL + "/p0.png", Model: "flux-schnell"}}},
			{Index: 2}, // no image, skipped
		},
	}

	res, err := e.Export(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if _, err := os.Stat(res.PDFPath); err != nil {
		t.Errorf("PDF not written: %v", err)
	}

	// Images land in page order regardless of input order.
	pagesDir := filepath.Join(filepath.Dir(res.PDFPath), "pages")
	for _, name := range []string{"page-000.png", "page-001.png"} {
		if _, err := os.Stat(filepath.Join(pagesDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	got, err := e.PDFPath("b2")
	if err != nil || got != res.PDFPath {
		t.Errorf("PDFPath() = %q, %v", got, err)
	}
}

func TestExportNoImages(t *testing.T) {
	e := NewExporter(testHome(t), nil)
	b := &book.Book{ID: "b3", Pages: []book.Page{{Index: 0}}}
	if _, err := e.Export(context.Background(), b, Options{}); err == nil {
		t.Error("expected error when no page has images")
	}
}

func TestDownloadRetries(t *testing.T) {
	var calls atomic.Int64
	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(img)
	}))
	defer srv.Close()

	e := NewExporter(testHome(t), nil)
	dest := filepath.Join(t.TempDir(), "out.png")
	if err := e.download(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("download() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestPickVariant(t *testing.T) {
	variants := []book.ImageVariant{
		{URL: "a", Model: "flux-schnell"},
		{URL: "b", Model: "seedream"},
	}

	if v := pickVariant(variants, "seedream"); v == nil || v.URL != "b" {
		t.Errorf("preferred model not selected: %+v", v)
	}
	if v := pickVariant(variants, "nanobanana"); v == nil || v.URL != "a" {
		t.Errorf("missing preferred model should fall back to first: %+v", v)
	}
	if v := pickVariant(nil, ""); v != nil {
		t.Errorf("empty variants should return nil, got %+v", v)
	}
}

func TestURLExt(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/img.jpg", ".jpg"},
		{"https://cdn.example.com/img.png?sig=abc", ".png"},
		{"https://cdn.example.com/img", ".png"},
		{"https://cdn.example.com/img.webp#frag", ".webp"},
	}
	for _, tt := range tests {
		if got := urlExt(tt.url); got != tt.want {
			t.Errorf("urlExt(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
