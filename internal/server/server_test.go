package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackzampolin/fable/internal/config"
	"github.com/jackzampolin/fable/internal/home"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := config.NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Config{Home: h, ConfigManager: mgr})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewRequiresHomeAndConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without home dir")
	}
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Home: h}); err == nil {
		t.Error("expected error without config manager")
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", "GET", "/health", http.StatusOK},
		{"status", "GET", "/status", http.StatusOK},
		{"books list", "GET", "/api/books", http.StatusOK},
		{"unknown job", "GET", "/api/images/status/nope", http.StatusNotFound},
		{"unknown route", "GET", "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := config.NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Config{Host: "127.0.0.1", Port: "9999", Home: h, ConfigManager: mgr})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Addr(); got != "127.0.0.1:9999" {
		t.Errorf("Addr() = %q", got)
	}
}
