// Package directory 通过 Supabase Auth 管理接口按邮箱解析用户。
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/telemetry"
	"github.com/BaSui01/medidash/internal/tlsutil"
	"github.com/BaSui01/medidash/types"
)

const serviceName = "supabase_auth"

// maxPages 翻页上限
const maxPages = 1000

// ErrUserNotFound 目录中不存在该邮箱
var ErrUserNotFound = errors.New("user not found")

// User 目录用户
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type listUsersResponse struct {
	Users []User `json:"users"`
}

// Recorder 记录上游调用
type Recorder interface {
	RecordUpstreamCall(service string, err error, duration time.Duration)
}

// Client Supabase 管理 API 客户端，使用 service_role 密钥
type Client struct {
	baseURL    string
	key        string
	pageSize   int
	httpClient *http.Client
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient 创建目录客户端
func NewClient(cfg config.DirectoryConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		key:        cfg.ServiceRoleKey,
		pageSize:   pageSize,
		httpClient: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger:     logger.With(zap.String("component", "directory")),
	}
}

// WithRecorder 设置指标记录器
func (c *Client) WithRecorder(r Recorder) *Client {
	c.recorder = r
	return c
}

// CheckConfigured 校验地址与密钥
func (c *Client) CheckConfigured() error {
	if c.baseURL == "" {
		return types.ConfigurationError("Supabase URL").WithUpstream(serviceName)
	}
	if c.key == "" {
		return types.ConfigurationError("Supabase service role key").WithUpstream(serviceName)
	}
	return nil
}

// FindUserByEmail 逐页扫描用户列表，邮箱不区分大小写。
// 未找到时返回 ErrUserNotFound。
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}

	target := strings.ToLower(strings.TrimSpace(email))
	for page := 1; page <= maxPages; page++ {
		users, err := c.listUsers(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range users {
			if strings.ToLower(users[i].Email) == target {
				return &users[i], nil
			}
		}
		if len(users) < c.pageSize {
			break
		}
	}

	return nil, ErrUserNotFound
}

func (c *Client) listUsers(ctx context.Context, page int) (users []User, err error) {
	ctx, finish := telemetry.StartUpstreamSpan(ctx, serviceName, "list_users")
	start := time.Now()
	defer func() {
		finish(err)
		if c.recorder != nil {
			c.recorder.RecordUpstreamCall(serviceName, err, time.Since(start))
		}
	}()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/admin/users?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list users request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list users request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("list users rejected", zap.Int("status", resp.StatusCode), zap.Int("page", page))
		return nil, types.NewError(types.ErrUpstreamError, "Failed to fetch users").
			WithUpstream(serviceName).
			WithDetails(string(body)).
			WithHTTPStatus(http.StatusInternalServerError)
	}

	var parsed listUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode list users response: %w", err)
	}
	return parsed.Users, nil
}
