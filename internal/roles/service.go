package roles

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/internal/directory"
	"github.com/BaSui01/medidash/internal/events"
	"github.com/BaSui01/medidash/types"
)

// UserResolver 按邮箱解析用户，*directory.Client 满足该接口
type UserResolver interface {
	FindUserByEmail(ctx context.Context, email string) (*directory.User, error)
}

// Recorder 记录分配结果
type Recorder interface {
	RecordRoleAssignment(role, outcome string)
}

// AssignResult 分配结果，附带原始邮箱
type AssignResult struct {
	Assignment
	Email string `json:"email"`
}

// UserRoles 用户及其角色
type UserRoles struct {
	UserID string       `json:"user_id"`
	Email  string       `json:"email"`
	Roles  []Assignment `json:"roles"`
}

// Service 角色分配服务
type Service struct {
	store     *Store
	users     UserResolver
	publisher events.Publisher
	recorder  Recorder
	logger    *zap.Logger
}

// NewService 创建服务，publisher 可为 nil。
// store 为 nil 时参数校验照常执行，之后的请求返回配置错误。
func NewService(store *Store, users UserResolver, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		users:     users,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "roles")),
	}
}

// WithRecorder 设置指标记录器
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Assign 为邮箱对应的用户分配角色
func (s *Service) Assign(ctx context.Context, email, roleName string) (*AssignResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(roleName) == "" {
		s.record("unknown", "invalid")
		return nil, types.NewError(types.ErrInvalidRequest, "Email and role are required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	role, ok := ParseRole(roleName)
	if !ok {
		s.record("unknown", "invalid")
		return nil, types.NewError(types.ErrInvalidRequest, "Invalid role: "+roleName).
			WithHTTPStatus(http.StatusBadRequest)
	}
	if s.store == nil {
		s.record(string(role), "error")
		return nil, storeNotConfigured()
	}

	user, err := s.resolve(ctx, email)
	if err != nil {
		s.record(string(role), outcomeFor(err))
		return nil, err
	}

	exists, err := s.store.Exists(ctx, user.ID, role)
	if err != nil {
		s.record(string(role), "error")
		return nil, datastoreError("Failed to assign role", err)
	}
	if exists {
		s.record(string(role), "duplicate")
		return nil, duplicateError()
	}

	assignment := &Assignment{UserID: user.ID, Role: role}
	if err := s.store.Create(ctx, assignment); err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			s.record(string(role), "duplicate")
			return nil, duplicateError()
		}
		s.record(string(role), "error")
		return nil, datastoreError("Failed to assign role", err)
	}

	s.record(string(role), "assigned")
	s.logger.Info("role assigned",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
	)

	requestID, _ := types.RequestID(ctx)
	assignedBy, _ := types.UserID(ctx)
	events.PublishAsync(s.publisher, events.NewEnvelope(events.TypeRoleAssigned, requestID, events.RoleAssigned{
		UserID:     user.ID,
		Email:      email,
		Role:       string(role),
		AssignedBy: assignedBy,
	}), s.logger)

	return &AssignResult{Assignment: *assignment, Email: email}, nil
}

// ListForEmail 列出邮箱对应用户的全部角色
func (s *Service) ListForEmail(ctx context.Context, email string) (*UserRoles, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "Email is required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	if s.store == nil {
		return nil, storeNotConfigured()
	}

	user, err := s.resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	assignments, err := s.store.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, datastoreError("Failed to list roles", err)
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	return &UserRoles{UserID: user.ID, Email: email, Roles: assignments}, nil
}

// IsAdmin 判断用户是否为管理员
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if s.store == nil {
		return false, storeNotConfigured()
	}
	return s.store.HasRole(ctx, userID, RoleAdmin)
}

func (s *Service) resolve(ctx context.Context, email string) (*directory.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, directory.ErrUserNotFound) {
		return nil, types.NewError(types.ErrNotFound, "User not found").
			WithHTTPStatus(http.StatusNotFound)
	}
	if apiErr, ok := types.AsError(err); ok {
		return nil, apiErr
	}
	return nil, types.NewError(types.ErrUpstreamError, "Failed to fetch users").
		WithCause(err).
		WithUpstream("supabase_auth").
		WithHTTPStatus(http.StatusInternalServerError)
}

func (s *Service) record(role, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordRoleAssignment(role, outcome)
	}
}

func outcomeFor(err error) string {
	if types.GetErrorCode(err) == types.ErrNotFound {
		return "not_found"
	}
	return "error"
}

func duplicateError() *types.Error {
	return types.NewError(types.ErrConflict, "User already has this role").
		WithHTTPStatus(http.StatusBadRequest)
}

func storeNotConfigured() *types.Error {
	return types.ConfigurationError("database").
		WithHTTPStatus(http.StatusInternalServerError)
}

func datastoreError(message string, err error) *types.Error {
	return types.NewError(types.ErrInternalError, message).
		WithCause(err).
		WithHTTPStatus(http.StatusInternalServerError)
}
