package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/tlsutil"
	"github.com/BaSui01/medidash/types"
)

const (
	// maxMessageSize 单帧上限，音频 delta 为 base64 文本
	maxMessageSize = 16 << 20
	// closeTimeout 发送错误帧的写超时
	closeTimeout = 5 * time.Second
)

// Recorder 中继指标，*metrics.Collector 满足该接口
type Recorder interface {
	RelaySessionStarted()
	RelaySessionEnded(outcome string)
	RecordRelayFrame(direction string)
}

// Relay WebSocket 中继
type Relay struct {
	cfg            config.RealtimeConfig
	originPatterns []string
	registry       *Registry
	httpClient     *http.Client
	recorder       Recorder
	logger         *zap.Logger
}

// NewRelay 创建中继；originPatterns 为允许的浏览器来源（"*" 表示任意）
func NewRelay(cfg config.RealtimeConfig, originPatterns []string, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		cfg:            cfg,
		originPatterns: originPatterns,
		registry:       NewRegistry(),
		httpClient:     tlsutil.WebSocketHTTPClient(),
		logger:         logger.With(zap.String("component", "realtime_relay")),
	}
}

// WithRecorder 设置指标记录器
func (r *Relay) WithRecorder(rec Recorder) *Relay {
	r.recorder = rec
	return r
}

// Registry 返回会话表
func (r *Relay) Registry() *Registry {
	return r.registry
}

// CheckConfigured 未配置 API Key 时返回配置错误
func (r *Relay) CheckConfigured() error {
	if r.cfg.APIKey == "" {
		return types.ConfigurationError("OpenAI API key").
			WithUpstream("openai_realtime").
			WithHTTPStatus(http.StatusInternalServerError)
	}
	return nil
}

// IsUpgradeRequest 判断是否为 WebSocket 升级请求
func IsUpgradeRequest(req *http.Request) bool {
	return strings.EqualFold(req.Header.Get("Upgrade"), "websocket")
}

func (r *Relay) upstreamURL() string {
	if r.cfg.Model == "" {
		return r.cfg.URL
	}
	sep := "?"
	if strings.Contains(r.cfg.URL, "?") {
		sep = "&"
	}
	return r.cfg.URL + sep + url.Values{"model": {r.cfg.Model}}.Encode()
}

// Serve 升级客户端连接并运行会话直至结束。调用方负责凭据与升级头校验。
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request) {
	// 升级后的连接不受 http.Server 读写超时约束
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	client, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: r.originPatterns,
	})
	if err != nil {
		r.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	client.SetReadLimit(maxMessageSize)

	sess := newSession(req.RemoteAddr)
	sess.attachClient(client)
	r.registry.Add(sess)
	if r.recorder != nil {
		r.recorder.RelaySessionStarted()
	}

	logger := r.logger.With(zap.String("session_id", sess.ID))
	if requestID, ok := types.RequestID(req.Context()); ok {
		logger = logger.With(zap.String("request_id", requestID))
	}
	logger.Info("relay session opened", zap.String("remote_addr", sess.RemoteAddr))

	r.run(context.WithoutCancel(req.Context()), sess, client, logger)

	sess.setState(StateTerminated)
	r.registry.Remove(sess.ID)
	if r.recorder != nil {
		r.recorder.RelaySessionEnded(sess.outcome)
	}
	logger.Info("relay session terminated",
		zap.String("outcome", sess.outcome),
		zap.Int64("client_frames", sess.clientFrames.Load()),
		zap.Int64("upstream_frames", sess.upstreamFrames.Load()),
		zap.Duration("duration", time.Since(sess.StartedAt)),
	)
}

func (r *Relay) run(ctx context.Context, sess *Session, client *websocket.Conn, logger *zap.Logger) {
	defer client.CloseNow()

	sess.setState(StateConnecting)
	upstream, err := r.dial(ctx)
	if err != nil {
		logger.Error("upstream dial failed", zap.Error(err))
		r.failUpstream(sess, client, "Failed to connect to OpenAI: "+err.Error())
		return
	}
	defer upstream.CloseNow()
	upstream.SetReadLimit(maxMessageSize)
	sess.attachUpstream(upstream)

	update, err := SessionUpdate(r.cfg)
	if err == nil {
		err = upstream.Write(ctx, websocket.MessageText, update)
	}
	if err != nil {
		logger.Error("session.update failed", zap.Error(err))
		r.failUpstream(sess, client, "Failed to configure session: "+err.Error())
		return
	}

	// 停机可能发生在拨号期间
	if !sess.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.forwardFromClient(gctx, sess, client, upstream)
	})
	g.Go(func() error {
		return r.forwardFromUpstream(gctx, sess, client, upstream, logger)
	})
	if err := g.Wait(); err != nil {
		logger.Debug("relay pumps stopped", zap.Error(err))
	}
}

func (r *Relay) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 仅约束握手；超时后取消 dialCtx
	if r.cfg.DialTimeout > 0 {
		timer := time.AfterFunc(r.cfg.DialTimeout, cancel)
		defer timer.Stop()
	}

	conn, _, err := websocket.Dial(dialCtx, r.upstreamURL(), &websocket.DialOptions{
		HTTPClient: r.httpClient,
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + r.cfg.APIKey},
			"OpenAI-Beta":   []string{"realtime=v1"},
		},
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *Relay) forwardFromClient(ctx context.Context, sess *Session, client, upstream *websocket.Conn) error {
	for {
		typ, data, err := client.Read(ctx)
		if err != nil {
			sess.end(OutcomeClientClosed, func() {
				_ = upstream.Close(websocket.StatusNormalClosure, "client disconnected")
			})
			return fmt.Errorf("client read: %w", err)
		}
		if err := upstream.Write(ctx, typ, data); err != nil {
			r.failUpstream(sess, client, "Upstream write failed: "+err.Error())
			return fmt.Errorf("upstream write: %w", err)
		}
		sess.clientFrames.Add(1)
		r.recordFrame(ClientToUpstream)
	}
}

func (r *Relay) forwardFromUpstream(ctx context.Context, sess *Session, client, upstream *websocket.Conn, logger *zap.Logger) error {
	for {
		typ, data, err := upstream.Read(ctx)
		if err != nil {
			if isGracefulClose(err) {
				sess.end(OutcomeUpstreamClosed, func() {
					_ = client.Close(websocket.StatusNormalClosure, "upstream closed")
				})
			} else {
				if sess.State() == StateActive {
					logger.Warn("upstream connection failed", zap.Error(err))
				}
				r.failUpstream(sess, client, upstreamErrorMessage(err))
			}
			return fmt.Errorf("upstream read: %w", err)
		}
		if err := client.Write(ctx, typ, data); err != nil {
			sess.end(OutcomeClientClosed, func() {
				_ = upstream.Close(websocket.StatusNormalClosure, "client disconnected")
			})
			return fmt.Errorf("client write: %w", err)
		}
		sess.upstreamFrames.Add(1)
		r.recordFrame(UpstreamToClient)
	}
}

// failUpstream 向客户端发送错误帧后以内部错误状态关闭
func (r *Relay) failUpstream(sess *Session, client *websocket.Conn, message string) {
	outcome := OutcomeUpstreamError
	if sess.State() == StateConnecting {
		outcome = OutcomeDialFailed
	}
	sess.end(outcome, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		_ = client.Write(ctx, websocket.MessageText, ErrorFrame(message))
		_ = client.Close(websocket.StatusInternalError, "upstream error")
	})
}

func (r *Relay) recordFrame(d Direction) {
	if r.recorder != nil {
		r.recorder.RecordRelayFrame(string(d))
	}
}

func isGracefulClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}

func upstreamErrorMessage(err error) string {
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Reason != "" {
			return ce.Reason
		}
		return fmt.Sprintf("Upstream closed with status %d", int(ce.Code))
	}
	return "Upstream connection error: " + err.Error()
}
