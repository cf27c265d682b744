package dialer

import (
	"context"
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

const serviceName = "dialer"

// maxBodySize 上游响应体读取上限
const maxBodySize = 1 << 20

// =============================================================================
// 📞 外呼客户端
// =============================================================================

// CallRequest 外呼请求
type CallRequest struct {
	PhoneNumber string
	Campaign    string
	ClientID    string
}

// CallResult 外呼结果，Response 为上游原始响应体
type CallResult struct {
	PhoneNumber string
	Campaign    string
	ClientID    string
	StatusCode  int
	Response    string
}

// UpstreamStatusError 上游返回非 2xx
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("dialer returned status %d", e.StatusCode)
}

// Recorder 记录上游调用，*metrics.Collector 满足该接口
type Recorder interface {
	RecordUpstreamCall(service string, err error, duration time.Duration)
}

// Client 拨号服务客户端
type Client struct {
	cfg        config.DialerConfig
	httpClient *http.Client
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient 创建拨号客户端
func NewClient(cfg config.DialerConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger:     logger.With(zap.String("component", "dialer")),
	}
}

// WithRecorder 设置指标记录器
func (c *Client) WithRecorder(r Recorder) *Client {
	c.recorder = r
	return c
}

// CheckConfigured 校验凭据与地址
func (c *Client) CheckConfigured() error {
	if c.cfg.APIKey == "" {
		return types.ConfigurationError("dialer API key").WithUpstream(serviceName)
	}
	if c.cfg.URL == "" {
		return types.ConfigurationError("dialer URL").WithUpstream(serviceName)
	}
	return nil
}

// Prepare 规范化号码并补齐默认的 campaign 与 client_id
func (c *Client) Prepare(req CallRequest) CallRequest {
	out := CallRequest{
		PhoneNumber: NormalizePhoneNumber(req.PhoneNumber, c.cfg.CountryCode),
		Campaign:    req.Campaign,
		ClientID:    req.ClientID,
	}
	if out.Campaign == "" {
		out.Campaign = c.cfg.DefaultCampaign
	}
	if out.ClientID == "" {
		out.ClientID = c.cfg.DefaultClientID
	}
	return out
}

// TriggerCall 发起一次外呼，不重试
func (c *Client) TriggerCall(ctx context.Context, req CallRequest) (result *CallResult, err error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}

	call := c.Prepare(req)
	if call.PhoneNumber == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "Phone number is required")
	}

	ctx, finish := telemetry.StartUpstreamSpan(ctx, serviceName, "trigger_call")
	start := time.Now()
	defer func() {
		finish(err)
		if c.recorder != nil {
			c.recorder.RecordUpstreamCall(serviceName, err, time.Since(start))
		}
	}()

	form := url.Values{}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("phone_number", call.PhoneNumber)
	form.Set("campaign", call.Campaign)
	form.Set("client_id", call.ClientID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build dialer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dialer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read dialer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("dialer rejected call",
			zap.Int("status", resp.StatusCode),
			zap.String("campaign", call.Campaign),
		)
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Info("call triggered",
		zap.String("campaign", call.Campaign),
		zap.String("client_id", call.ClientID),
	)

	return &CallResult{
		PhoneNumber: call.PhoneNumber,
		Campaign:    call.Campaign,
		ClientID:    call.ClientID,
		StatusCode:  resp.StatusCode,
		Response:    string(body),
	}, nil
}
