package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/internal/elevenlabs"
	"github.com/BaSui01/medidash/types"
)

// SignedURLProvider 签名地址来源，*elevenlabs.Client 满足该接口
type SignedURLProvider interface {
	Configured() bool
	SignedURL(ctx context.Context, agentID string) (string, error)
}

// SearchContext 引导时的搜索上下文，Results 原样透传
type SearchContext struct {
	Query     string          `json:"query"`
	Results   json.RawMessage `json:"results"`
	Timestamp time.Time       `json:"timestamp"`
}

// Bootstrap 引导结果
type Bootstrap struct {
	ConversationID string        `json:"conversationId"`
	SignedURL      string        `json:"signedUrl"`
	SearchContext  SearchContext `json:"searchContext"`
}

// Service 会话引导服务
type Service struct {
	signer  SignedURLProvider
	agentID string
	store   ContextStore
	now     func() time.Time
	logger  *zap.Logger
}

// NewService 创建服务，store 可为 nil（不缓存上下文）
func NewService(signer SignedURLProvider, agentID string, store ContextStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		signer:  signer,
		agentID: agentID,
		store:   store,
		now:     time.Now,
		logger:  logger.With(zap.String("component", "conversation")),
	}
}

// Bootstrap 获取签名地址并生成会话
func (s *Service) Bootstrap(ctx context.Context, query string, results json.RawMessage) (*Bootstrap, error) {
	if !s.signer.Configured() {
		return nil, types.ConfigurationError("ElevenLabs API key").
			WithHTTPStatus(http.StatusInternalServerError)
	}
	if strings.TrimSpace(s.agentID) == "" {
		return nil, types.ConfigurationError("ElevenLabs agent id").
			WithHTTPStatus(http.StatusInternalServerError)
	}

	signed, err := s.signer.SignedURL(ctx, s.agentID)
	if err != nil {
		return nil, upstreamError(err)
	}

	now := s.now()
	if len(results) == 0 {
		results = json.RawMessage("null")
	}
	out := &Bootstrap{
		ConversationID: NewID(now),
		SignedURL:      signed,
		SearchContext: SearchContext{
			Query:     query,
			Results:   results,
			Timestamp: now.UTC(),
		},
	}

	if s.store != nil {
		if err := s.store.Save(ctx, out.ConversationID, out.SearchContext); err != nil {
			s.logger.Warn("failed to cache conversation context",
				zap.String("conversation_id", out.ConversationID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("conversation bootstrapped", zap.String("conversation_id", out.ConversationID))
	return out, nil
}

// Context 取回会话的搜索上下文
func (s *Service) Context(ctx context.Context, conversationID string) (*SearchContext, error) {
	if s.store == nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "Conversation context cache is not enabled").
			WithHTTPStatus(http.StatusServiceUnavailable)
	}

	sc, err := s.store.Load(ctx, conversationID)
	if errors.Is(err, ErrContextNotFound) {
		return nil, types.NewError(types.ErrNotFound, "Conversation context not found").
			WithHTTPStatus(http.StatusNotFound)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "Failed to load conversation context").
			WithCause(err).
			WithHTTPStatus(http.StatusInternalServerError)
	}
	return sc, nil
}

func upstreamError(err error) *types.Error {
	if apiErr, ok := types.AsError(err); ok {
		return apiErr
	}
	e := types.NewError(types.ErrUpstreamError, "Failed to get signed URL").
		WithCause(err).
		WithUpstream("elevenlabs").
		WithHTTPStatus(http.StatusInternalServerError)

	var se *elevenlabs.StatusError
	if errors.As(err, &se) {
		e.WithDetails(se.Body)
	}
	return e
}
