package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pepperumo/peppegpt/internal/chat"
	"github.com/pepperumo/peppegpt/internal/compose"
	"github.com/pepperumo/peppegpt/internal/config"
	"github.com/pepperumo/peppegpt/internal/facts"
	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/internal/retrieval"
	"go.uber.org/zap"
)

// constEmbedder maps every text to the same unit vector, so every chunk
// matches every query.
type constEmbedder struct{}

func (constEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (c constEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = c.Embed(ctx, texts[i])
	}
	return out, nil
}

func (constEmbedder) Dimensions() int { return 2 }
func (constEmbedder) Close() error    { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Backend = config.EmbeddingBackendMock
	cfg.Generation.Backend = config.GenerationBackendNone
	return cfg
}

func newTestServer(t *testing.T, loaded bool) *Server {
	t.Helper()
	engine := retrieval.NewEngine(constEmbedder{}, nil)
	if loaded {
		chunks := []models.ContentChunk{
			{Content: "Language: Italian - Native", Section: "language_0", Source: models.SourceStructuredContent},
			{Content: "Language: English - Fluent", Section: "language_1", Source: models.SourceStructuredContent},
		}
		if err := engine.Load(context.Background(), chunks); err != nil {
			t.Fatal(err)
		}
	}
	extractor := facts.NewExtractor("Giuseppe")
	composer := compose.NewComposer(nil, "Giuseppe", 0, nil)
	chatSvc := chat.NewService(engine, extractor, composer, nil, nil, "Giuseppe", nil)
	return NewServer(chatSvc, engine, nil, testConfig(), zap.NewNop())
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status body = %v", body)
	}
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/chat",
		models.ChatRequest{Message: "What languages does he speak?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ResponseType != models.ResponseHighConfidence {
		t.Errorf("response_type = %q, want high_confidence", resp.ResponseType)
	}
	if resp.SessionID == "" {
		t.Error("session_id missing")
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/chat", models.ChatRequest{Message: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChatInvalidBody(t *testing.T) {
	srv := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/search",
		models.SearchRequest{Query: "languages spoken"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("total_results = %d, want 2", resp.TotalResults)
	}
}

func TestHandleSearchNotInitialized(t *testing.T) {
	srv := newTestServer(t, false)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/search",
		models.SearchRequest{Query: "anything"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/search", models.SearchRequest{Query: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["initialized"] != true {
		t.Errorf("initialized = %v, want true", body["initialized"])
	}
	if body["total_chunks"].(float64) != 2 {
		t.Errorf("total_chunks = %v, want 2", body["total_chunks"])
	}
}

func TestHandleContent(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/content", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		TotalChunks int      `json:"total_chunks"`
		Sections    []string `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.TotalChunks != 2 || len(body.Sections) != 2 {
		t.Errorf("content body = %+v", body)
	}
}

func TestHandleConfigHidesSecrets(t *testing.T) {
	srv := newTestServer(t, true)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if bytes.Contains(bytes.ToLower(rec.Body.Bytes()), []byte("key")) {
		t.Errorf("config response mentions keys: %s", rec.Body.String())
	}
}
