package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/realtime"
)

// =============================================================================
// 🧪 RelayHandler 测试
// =============================================================================

func TestRelayHandler_MissingAPIKey(t *testing.T) {
	relay := realtime.NewRelay(config.RealtimeConfig{URL: "ws://127.0.0.1:1"}, nil, zap.NewNop())
	h := NewRelayHandler(relay, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/realtime", nil)
	r.Header.Set("Upgrade", "websocket")
	h.HandleRealtime(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIGURATION", resp.Code)
}

func TestRelayHandler_ExpectedWebsocket(t *testing.T) {
	relay := realtime.NewRelay(config.RealtimeConfig{URL: "ws://127.0.0.1:1", APIKey: "sk-test"}, nil, zap.NewNop())
	h := NewRelayHandler(relay, zap.NewNop())

	w := httptest.NewRecorder()
	h.HandleRealtime(w, httptest.NewRequest(http.MethodGet, "/api/v1/realtime", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Expected websocket", w.Body.String())
	assert.Equal(t, 0, relay.Registry().Count())
}

func TestRelayHandler_ForwardsThroughWrappedWriter(t *testing.T) {
	received := make(chan string, 4)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			received <- string(data)
		}
	}))
	defer upstream.Close()

	relay := realtime.NewRelay(config.RealtimeConfig{
		URL:         "ws" + strings.TrimPrefix(upstream.URL, "http"),
		APIKey:      "sk-test",
		DialTimeout: 5 * time.Second,
	}, []string{"*"}, zap.NewNop())
	h := NewRelayHandler(relay, zap.NewNop())

	// 模拟中间件对 ResponseWriter 的包装
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleRealtime(NewResponseWriter(w), r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.CloseNow()

	select {
	case first := <-received:
		assert.Contains(t, first, `"session.update"`)
	case <-ctx.Done():
		t.Fatal("session.update not received upstream")
	}

	require.NoError(t, client.Write(ctx, websocket.MessageText, []byte(`{"type":"input_audio_buffer.append"}`)))
	select {
	case msg := <-received:
		assert.Equal(t, `{"type":"input_audio_buffer.append"}`, msg)
	case <-ctx.Done():
		t.Fatal("client frame not forwarded")
	}

	list := httptest.NewRecorder()
	h.HandleListSessions(list, httptest.NewRequest(http.MethodGet, "/api/v1/relay/sessions", nil))
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"state":"active"`)

	require.NoError(t, client.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return relay.Registry().Count() == 0 }, 5*time.Second, 20*time.Millisecond)
}
