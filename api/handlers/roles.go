package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/api"
	"github.com/BaSui01/medidash/internal/roles"
)

// =============================================================================
// 🛡️ 角色分配 Handler
// =============================================================================

// RoleService 角色服务，*roles.Service 满足该接口
type RoleService interface {
	Assign(ctx context.Context, email, role string) (*roles.AssignResult, error)
	ListForEmail(ctx context.Context, email string) (*roles.UserRoles, error)
}

// RoleHandler 角色分配处理器
type RoleHandler struct {
	service RoleService
	logger  *zap.Logger
}

// NewRoleHandler 创建角色处理器
func NewRoleHandler(service RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "roles")),
	}
}

// HandleAssign 处理 POST /api/v1/roles
func (h *RoleHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req api.AssignRoleRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	result, err := h.service.Assign(r.Context(), req.Email, req.Role)
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	WriteSuccess(w, result)
}

// HandleList 处理 GET /api/v1/roles?email=
func (h *RoleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListForEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	WriteSuccess(w, result)
}
