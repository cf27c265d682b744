package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/api"
	"github.com/BaSui01/medidash/internal/dialer"
	"github.com/BaSui01/medidash/internal/events"
	"github.com/BaSui01/medidash/types"
)

// =============================================================================
// 📞 外呼触发 Handler
// =============================================================================

// CallTrigger 外呼客户端，*dialer.Client 满足该接口
type CallTrigger interface {
	TriggerCall(ctx context.Context, req dialer.CallRequest) (*dialer.CallResult, error)
}

// CallHandler 外呼处理器
type CallHandler struct {
	dialer    CallTrigger
	publisher events.Publisher
	logger    *zap.Logger
}

// NewCallHandler 创建外呼处理器，publisher 为 nil 时不发布事件
func NewCallHandler(trigger CallTrigger, publisher events.Publisher, logger *zap.Logger) *CallHandler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CallHandler{
		dialer:    trigger,
		publisher: publisher,
		logger:    logger.With(zap.String("handler", "calls")),
	}
}

// HandleTrigger 处理 POST /api/v1/calls
func (h *CallHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var req api.TriggerCallRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	result, err := h.dialer.TriggerCall(r.Context(), dialer.CallRequest{
		PhoneNumber: req.PhoneNumber,
		Campaign:    req.Campaign,
		ClientID:    req.ClientID,
	})

	var statusErr *dialer.UpstreamStatusError
	switch {
	case errors.As(err, &statusErr):
		h.logger.Error("dialer returned failure status",
			zap.Int("upstream_status", statusErr.StatusCode),
			zap.String("body", statusErr.Body),
		)
		WriteJSON(w, http.StatusInternalServerError, api.CallFailureResponse{
			Success: false,
			Error:   "Failed to trigger call",
			Status:  statusErr.StatusCode,
			Details: statusErr.Body,
		})
		return
	case err != nil:
		if _, ok := types.AsError(err); !ok {
			err = types.NewError(types.ErrUpstreamError, "Failed to trigger call").
				WithCause(err).
				WithUpstream("dialer").
				WithHTTPStatus(http.StatusInternalServerError)
		}
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	requestID, _ := types.RequestID(r.Context())
	events.PublishAsync(h.publisher, events.NewEnvelope(events.TypeCallTriggered, requestID, events.CallTriggered{
		PhoneSuffix: events.PhoneSuffix(result.PhoneNumber),
		Campaign:    result.Campaign,
		ClientID:    result.ClientID,
	}), h.logger)

	WriteJSON(w, http.StatusOK, api.TriggerCallResponse{
		Success:  true,
		Message:  "Call triggered successfully",
		Response: result.Response,
	})
}
