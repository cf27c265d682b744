package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/internal/realtime"
)

// =============================================================================
// 🎙️ 语音中继 Handler
// =============================================================================

// RelayHandler 语音中继入口与会话查询
type RelayHandler struct {
	relay  *realtime.Relay
	logger *zap.Logger
}

// NewRelayHandler 创建中继处理器
func NewRelayHandler(relay *realtime.Relay, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{
		relay:  relay,
		logger: logger.With(zap.String("handler", "relay")),
	}
}

// HandleRealtime 处理 GET /api/v1/realtime。
// 未配置凭据返回 500 JSON；非升级请求返回纯文本 400 "Expected websocket"。
func (h *RelayHandler) HandleRealtime(w http.ResponseWriter, r *http.Request) {
	if err := h.relay.CheckConfigured(); err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	if !realtime.IsUpgradeRequest(r) {
		h.logger.Debug("rejected non-websocket request", zap.String("remote_addr", r.RemoteAddr))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Expected websocket"))
		return
	}

	h.relay.Serve(w, r)
}

// HandleListSessions 处理 GET /api/v1/relay/sessions
func (h *RelayHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.relay.Registry().List())
}
