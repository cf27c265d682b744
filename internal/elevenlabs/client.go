// Package elevenlabs 提供 ElevenLabs Conversational AI 的签名地址获取。
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/telemetry"
	"github.com/BaSui01/medidash/internal/tlsutil"
	"github.com/BaSui01/medidash/types"
)

const serviceName = "elevenlabs"

const signedURLPath = "/v1/convai/conversation/get_signed_url"

// Recorder 记录上游调用
type Recorder interface {
	RecordUpstreamCall(service string, err error, duration time.Duration)
}

// StatusError 上游返回非 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elevenlabs returned status %d: %s", e.StatusCode, e.Body)
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

// Client ElevenLabs 客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient 创建客户端
func NewClient(cfg config.ConversationConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger:     logger.With(zap.String("component", "elevenlabs")),
	}
}

// WithRecorder 设置指标记录器
func (c *Client) WithRecorder(r Recorder) *Client {
	c.recorder = r
	return c
}

// Configured 是否已配置 API Key
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SignedURL 为指定 agent 获取一次性会话签名地址
func (c *Client) SignedURL(ctx context.Context, agentID string) (signed string, err error) {
	if !c.Configured() {
		return "", types.ConfigurationError("ElevenLabs API key").WithUpstream(serviceName)
	}

	ctx, finish := telemetry.StartUpstreamSpan(ctx, serviceName, "get_signed_url")
	start := time.Now()
	defer func() {
		finish(err)
		if c.recorder != nil {
			c.recorder.RecordUpstreamCall(serviceName, err, time.Since(start))
		}
	}()

	endpoint := c.baseURL + signedURLPath + "?" + url.Values{"agent_id": {agentID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build signed url request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signed url request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read signed url response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("signed url request rejected", zap.Int("status", resp.StatusCode))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed signedURLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}
	if parsed.SignedURL == "" {
		return "", fmt.Errorf("signed url missing from response")
	}

	return parsed.SignedURL, nil
}
