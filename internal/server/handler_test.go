package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"coderag/config"
	"coderag/internal/adapter/llm"
	"coderag/internal/domain"
)

type stubQuerier struct {
	got  domain.QueryRequest
	resp *domain.QueryResponse
	err  error
}

func (s *stubQuerier) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	s.got = req
	return s.resp, s.err
}

func newTestRouter(t *testing.T, q Querier, cfg config.ServerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(cfg, q, zaptest.NewLogger(t))
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRootAndHealth(t *testing.T) {
	router := newTestRouter(t, &stubQuerier{}, config.ServerConfig{})

	w := do(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "online", "service": "Code-Aware RAG API"}, decode(t, w))

	w = do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "healthy"}, decode(t, w))
}

func TestQuerySuccess(t *testing.T) {
	q := &stubQuerier{resp: &domain.QueryResponse{
		Answer:  "it parses",
		Sources: []domain.Source{{Text: "def p()...", FilePath: "p.py", RepoName: "r", Score: 0.912}},
	}}
	router := newTestRouter(t, q, config.ServerConfig{})

	w := do(router, http.MethodPost, "/query", `{"query":"what parses?","task_type":"microservice_analysis"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.QueryRequest{Query: "what parses?", TopK: 5, TaskType: "microservice_analysis"}, q.got)

	var resp domain.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, *q.resp, resp)
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"timeout", fmt.Errorf("generate: %w", llm.ErrTimeout), http.StatusGatewayTimeout, timeoutDetail},
		{"unavailable", llm.ErrUnavailable, http.StatusServiceUnavailable, unavailableDetail},
		{"status", &llm.StatusError{Code: 404}, http.StatusInternalServerError, "Error calling LLM API: 404"},
		{"other", errors.New("search code: boom"), http.StatusInternalServerError, "search code: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubQuerier{err: tt.err}, config.ServerConfig{})

			w := do(router, http.MethodPost, "/query", `{"query":"q"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decode(t, w)["detail"])
			if tt.wantStatus == http.StatusGatewayTimeout {
				assert.Equal(t, retryAfterSeconds, w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestQueryRejectsBadBody(t *testing.T) {
	router := newTestRouter(t, &stubQuerier{}, config.ServerConfig{})

	w := do(router, http.MethodPost, "/query", `{"query":`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCORSAllowsAll(t *testing.T) {
	router := newTestRouter(t, &stubQuerier{}, config.ServerConfig{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSAllowlist(t *testing.T) {
	router := newTestRouter(t, &stubQuerier{}, config.ServerConfig{CORSOrigins: []string{"http://ok.dev"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://ok.dev")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://ok.dev", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.dev")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitOnQuery(t *testing.T) {
	q := &stubQuerier{resp: &domain.QueryResponse{Answer: "a"}}
	router := newTestRouter(t, q, config.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/query", `{"query":"q"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodPost, "/query", `{"query":"q"}`).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health", "").Code)
}
