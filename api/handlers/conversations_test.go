package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/cache"
	"github.com/BaSui01/medidash/internal/conversation"
	"github.com/BaSui01/medidash/internal/elevenlabs"
)

// =============================================================================
// 🧪 ConversationHandler 测试
// =============================================================================

func newSignedURLServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/convai/conversation/get_signed_url", r.URL.Path)
		assert.Equal(t, "agent-1", r.URL.Query().Get("agent_id"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func newConversationHandler(t *testing.T, baseURL, apiKey string, store conversation.ContextStore) *ConversationHandler {
	t.Helper()
	client := elevenlabs.NewClient(config.ConversationConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	svc := conversation.NewService(client, "agent-1", store, zap.NewNop())
	return NewConversationHandler(svc, zap.NewNop())
}

func postBootstrap(h *ConversationHandler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(body))
	h.HandleBootstrap(w, r)
	return w
}

func TestConversationHandler_Bootstrap(t *testing.T) {
	srv, hits := newSignedURLServer(t, http.StatusOK, `{"signed_url":"wss://x"}`)
	h := newConversationHandler(t, srv.URL, "xi-key", nil)

	w := postBootstrap(h, `{"searchQuery":"cardiology","searchResults":[{"name":"Dr. Rao"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), hits.Load())

	var resp conversation.Bootstrap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wss://x", resp.SignedURL)
	assert.True(t, strings.HasPrefix(resp.ConversationID, "conv_"))
	assert.Equal(t, "cardiology", resp.SearchContext.Query)
	assert.JSONEq(t, `[{"name":"Dr. Rao"}]`, string(resp.SearchContext.Results))

	second := postBootstrap(h, `{"searchQuery":"cardiology","searchResults":[]}`)
	var again conversation.Bootstrap
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &again))
	assert.NotEqual(t, resp.ConversationID, again.ConversationID)
}

func TestConversationHandler_MissingAPIKey(t *testing.T) {
	srv, hits := newSignedURLServer(t, http.StatusOK, `{"signed_url":"wss://x"}`)
	h := newConversationHandler(t, srv.URL, "", nil)

	w := postBootstrap(h, `{"searchQuery":"q","searchResults":null}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, hits.Load())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestConversationHandler_UpstreamFailure(t *testing.T) {
	srv, _ := newSignedURLServer(t, http.StatusUnauthorized, `{"detail":"invalid api key"}`)
	h := newConversationHandler(t, srv.URL, "xi-key", nil)

	w := postBootstrap(h, `{"searchQuery":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to get signed URL", resp.Error)
	assert.Contains(t, resp.Details, "invalid api key")
}

func TestConversationHandler_MalformedBody(t *testing.T) {
	srv, hits := newSignedURLServer(t, http.StatusOK, `{"signed_url":"wss://x"}`)
	h := newConversationHandler(t, srv.URL, "xi-key", nil)

	for _, body := range []string{"", "{not json", `["array"]`} {
		w := postBootstrap(h, body)

		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), body)
		assert.NotEmpty(t, resp.Error)
	}
	assert.Zero(t, hits.Load())
}

func TestConversationHandler_Context(t *testing.T) {
	mr := miniredis.RunT(t)
	manager, err := cache.NewManager(cache.Config{Addr: mr.Addr(), KeyPrefix: "medidash:", DefaultTTL: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	srv, _ := newSignedURLServer(t, http.StatusOK, `{"signed_url":"wss://x"}`)
	h := newConversationHandler(t, srv.URL, "xi-key", conversation.NewRedisContextStore(manager, time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/conversations/{id}/context", h.HandleContext)

	boot := postBootstrap(h, `{"searchQuery":"dermatology","searchResults":{"total":3}}`)
	require.Equal(t, http.StatusOK, boot.Code)
	var created conversation.Bootstrap
	require.NoError(t, json.Unmarshal(boot.Body.Bytes(), &created))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+created.ConversationID+"/context", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Data    conversation.SearchContext `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "dermatology", resp.Data.Query)
	assert.JSONEq(t, `{"total":3}`, string(resp.Data.Results))

	missing := httptest.NewRecorder()
	mux.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv_0_unknown/context", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestConversationHandler_ContextWithoutStore(t *testing.T) {
	h := newConversationHandler(t, "http://127.0.0.1:1", "xi-key", nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/conversations/{id}/context", h.HandleContext)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv_1/context", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
