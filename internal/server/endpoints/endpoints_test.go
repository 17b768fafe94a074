package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/engine"
	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/prompts/concepts"
	"github.com/jackzampolin/fable/internal/providers"
	"github.com/jackzampolin/fable/internal/svcctx"
)

// testServer wires all endpoints over in-memory services.
type testServer struct {
	handler  http.Handler
	services *svcctx.Services
	mock     *providers.MockClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	registry := providers.NewRegistry()
	mock := providers.NewMockClient()
	registry.RegisterLLM("mock", mock)

	resolver := prompts.NewResolver(nil)
	concepts.RegisterPrompts(resolver)

	jobStore := imagejob.NewMemStore()
	services := &svcctx.Services{
		Books:     book.NewStore(t.TempDir(), nil),
		Jobs:      jobStore,
		Submitter: imagejob.NewSubmitter(jobStore, engine.NewClient(""), nil),
		Registry:  registry,
		Engine:    engine.NewClient(""),
		Resolver:  resolver,
	}

	mux := http.NewServeMux()
	reg := api.NewRegistry()
	for _, ep := range All(Config{}) {
		reg.Register(ep)
	}
	reg.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	})

	return &testServer{handler: handler, services: services, mock: mock}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[HealthResponse](t, w)
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "GET", "/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[StatusResponse](t, w)
	if len(resp.Providers) != 1 || resp.Providers[0] != "mock" {
		t.Errorf("Providers = %v", resp.Providers)
	}
	if resp.Engine != "not_configured" {
		t.Errorf("Engine = %q", resp.Engine)
	}
}

func TestBooksCRUD(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/books", CreateBookRequest{
		Title: "The Brave Snail",
		Brief: book.Brief{Theme: "courage", PageCount: 12},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decode[book.Book](t, w)
	if created.ID == "" {
		t.Fatal("no id assigned")
	}

	t.Run("reject zero page count", func(t *testing.T) {
		w := ts.do(t, "POST", "/api/books", CreateBookRequest{Title: "x"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := ts.do(t, "GET", "/api/books/"+created.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		got := decode[book.Book](t, w)
		if got.Brief.Theme != "courage" {
			t.Errorf("Theme = %q", got.Brief.Theme)
		}
	})

	t.Run("get missing returns 404", func(t *testing.T) {
		if w := ts.do(t, "GET", "/api/books/nope", nil); w.Code != http.StatusNotFound {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("update preserves id and created_at", func(t *testing.T) {
		doc := created
		doc.ID = "spoofed"
		doc.Stage = book.StageOutline
		w := ts.do(t, "PUT", "/api/books/"+created.ID, doc)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		updated := decode[book.Book](t, w)
		if updated.ID != created.ID {
			t.Errorf("ID = %q, want %q", updated.ID, created.ID)
		}
		if updated.Stage != book.StageOutline {
			t.Errorf("Stage = %q", updated.Stage)
		}
	})

	t.Run("list", func(t *testing.T) {
		w := ts.do(t, "GET", "/api/books", nil)
		books := decode[[]book.Book](t, w)
		if len(books) != 1 {
			t.Errorf("books = %d", len(books))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if w := ts.do(t, "DELETE", "/api/books/"+created.ID, nil); w.Code != http.StatusNoContent {
			t.Errorf("status = %d", w.Code)
		}
		if w := ts.do(t, "GET", "/api/books/"+created.ID, nil); w.Code != http.StatusNotFound {
			t.Errorf("status after delete = %d", w.Code)
		}
	})
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		ts.mock.ResponseText = "Once upon a time."
		w := ts.do(t, "POST", "/api/generate", GenerateRequest{
			Provider: "mock",
			Messages: []providers.Message{{Role: "user", Content: "hi"}},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		resp := decode[GenerateResponse](t, w)
		if resp.Content != "Once upon a time." {
			t.Errorf("Content = %q", resp.Content)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		w := ts.do(t, "POST", "/api/generate", GenerateRequest{
			Provider: "nope",
			Messages: []providers.Message{{Role: "user", Content: "hi"}},
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("missing messages", func(t *testing.T) {
		w := ts.do(t, "POST", "/api/generate", GenerateRequest{Provider: "mock"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("missing credential returns 500", func(t *testing.T) {
		ts.services.Registry.RegisterLLM("keyless", keylessClient{})
		w := ts.do(t, "POST", "/api/generate", GenerateRequest{
			Provider: "keyless",
			Messages: []providers.Message{{Role: "user", Content: "hi"}},
		})
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", w.Code)
		}
	})
}

// keylessClient fails every chat the way a provider with no configured
// API key does.
type keylessClient struct{}

func (keylessClient) Name() string { return "keyless" }

func (keylessClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	return nil, fmt.Errorf("keyless: %w", providers.ErrMissingAPIKey)
}

func TestImagesFlow(t *testing.T) {
	ts := newTestServer(t)

	// The engine is unconfigured, so dispatch fails; the job id still
	// comes back and the job reads as errored.
	w := ts.do(t, "POST", "/api/images/submit", SubmitImagesRequest{
		Pages:  []imagejob.PageSpec{{Index: 0, Prompt: "a snail"}, {Index: 1, Prompt: "a fence"}},
		Models: []string{"flux-schnell"},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}
	submitted := decode[imagejob.SubmitResult](t, w)
	if submitted.JobID == "" {
		t.Fatal("no job id")
	}
	if submitted.Status != imagejob.StatusError {
		t.Errorf("Status = %q, want error (engine unconfigured)", submitted.Status)
	}
	if submitted.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", submitted.TotalPages)
	}

	t.Run("status returns the job", func(t *testing.T) {
		w := ts.do(t, "GET", "/api/images/status/"+submitted.JobID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		job := decode[imagejob.Job](t, w)
		if job.ID != submitted.JobID {
			t.Errorf("ID = %q", job.ID)
		}
	})

	t.Run("status for unknown job", func(t *testing.T) {
		if w := ts.do(t, "GET", "/api/images/status/nope", nil); w.Code != http.StatusNotFound {
			t.Errorf("status = %d", w.Code)
		}
	})
}

func TestImagesCallback(t *testing.T) {
	ts := newTestServer(t)

	job := imagejob.NewJob("job-1", 2)
	if err := ts.services.Jobs.Create(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	t.Run("array delivery appends", func(t *testing.T) {
		body := json.RawMessage(`[{"page_index": 0, "url": "https://cdn/img0.png", "model": "flux-schnell"}]`)
		w := ts.do(t, "POST", "/api/images/callback/job-1", body)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		updated := decode[imagejob.Job](t, w)
		if updated.CompletedPages != 1 {
			t.Errorf("CompletedPages = %d, want 1", updated.CompletedPages)
		}
		if updated.Status != imagejob.StatusProcessing {
			t.Errorf("Status = %q", updated.Status)
		}
	})

	t.Run("second delivery completes the job", func(t *testing.T) {
		body := json.RawMessage(`[{"page_index": 1, "url": "https://cdn/img1.png", "model": "flux-schnell"}]`)
		w := ts.do(t, "POST", "/api/images/callback/job-1", body)
		updated := decode[imagejob.Job](t, w)
		if updated.Status != imagejob.StatusDone {
			t.Errorf("Status = %q, want done", updated.Status)
		}
	})

	t.Run("unknown job returns 404", func(t *testing.T) {
		body := json.RawMessage(`[]`)
		if w := ts.do(t, "POST", "/api/images/callback/nope", body); w.Code != http.StatusNotFound {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("malformed body returns 500", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/images/callback/job-1", bytes.NewReader([]byte("{nope")))
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("partially parseable body persists nothing", func(t *testing.T) {
		job := imagejob.NewJob("job-2", 1)
		if err := ts.services.Jobs.Create(context.Background(), job); err != nil {
			t.Fatal(err)
		}

		body := []byte(`{"0": {"variants": [{"url": "https://img/0", "model": "m"}]}, "page_index": "oops"}`)
		req := httptest.NewRequest("POST", "/api/images/callback/job-2", bytes.NewReader(body))
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", w.Code)
		}

		stored := ts.services.Jobs.Get(context.Background(), "job-2")
		if stored == nil {
			t.Fatalf("Get() = %v", stored)
		}
		if len(stored.Results) != 0 {
			t.Errorf("Results = %v, want empty", stored.Results)
		}
		if stored.CompletedPages != 0 || stored.Status != imagejob.StatusProcessing {
			t.Errorf("job = %d completed, %s", stored.CompletedPages, stored.Status)
		}
	})
}

func TestPrompts(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/api/prompts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	infos := decode[[]PromptInfo](t, w)
	if len(infos) != 2 {
		t.Fatalf("prompts = %d, want 2", len(infos))
	}

	w = ts.do(t, "GET", "/api/prompts/"+concepts.SystemPromptKey, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if w := ts.do(t, "GET", "/api/prompts/stages.nope.system", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCallbackBase(t *testing.T) {
	tests := []struct {
		name  string
		proto string
		host  string
		want  string
	}{
		{"plain http", "", "localhost:8080", "http://localhost:8080"},
		{"behind proxy", "https", "fable.example.com", "https://fable.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/images/submit", nil)
			r.Host = tt.host
			if tt.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if got := callbackBase(r); got != tt.want {
				t.Errorf("callbackBase() = %q, want %q", got, tt.want)
			}
		})
	}
}
