package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/api"
	"github.com/BaSui01/medidash/internal/conversation"
	"github.com/BaSui01/medidash/types"
)

// =============================================================================
// 💬 对话引导 Handler
// =============================================================================

// ConversationService 对话引导服务，*conversation.Service 满足该接口
type ConversationService interface {
	Bootstrap(ctx context.Context, query string, results json.RawMessage) (*conversation.Bootstrap, error)
	Context(ctx context.Context, conversationID string) (*conversation.SearchContext, error)
}

// ConversationHandler 对话引导处理器
type ConversationHandler struct {
	service ConversationService
	logger  *zap.Logger
}

// NewConversationHandler 创建对话处理器
func NewConversationHandler(service ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "conversations")),
	}
}

// HandleBootstrap 处理 POST /api/v1/conversations，成功时直接返回引导结果。
// 该端点只有 200 与 500 两种状态，请求体无法解析也按 500 返回。
func (h *ConversationHandler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req api.BootstrapRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		WriteError(w, apiErr.WithHTTPStatus(http.StatusInternalServerError), h.logger)
		return
	}

	result, err := h.service.Bootstrap(r.Context(), req.SearchQuery, req.SearchResults)
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// HandleContext 处理 GET /api/v1/conversations/{id}/context
func (h *ConversationHandler) HandleContext(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "conversation id is required", h.logger)
		return
	}

	sc, err := h.service.Context(r.Context(), id)
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	WriteSuccess(w, sc)
}
