package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/medidash/api/handlers"
	"github.com/BaSui01/medidash/config"
	"github.com/BaSui01/medidash/internal/cache"
	"github.com/BaSui01/medidash/internal/conversation"
	"github.com/BaSui01/medidash/internal/database"
	"github.com/BaSui01/medidash/internal/dialer"
	"github.com/BaSui01/medidash/internal/directory"
	"github.com/BaSui01/medidash/internal/elevenlabs"
	"github.com/BaSui01/medidash/internal/events"
	"github.com/BaSui01/medidash/internal/metrics"
	"github.com/BaSui01/medidash/internal/realtime"
	"github.com/BaSui01/medidash/internal/roles"
	"github.com/BaSui01/medidash/internal/server"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Dependencies 由 main 建立的外部连接，均可为 nil
type Dependencies struct {
	DB        *database.PoolManager
	Cache     *cache.Manager
	Publisher events.Publisher
}

// Server 是 medidash 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   Dependencies

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// Handlers
	healthHandler       *handlers.HealthHandler
	roleHandler         *handlers.RoleHandler
	callHandler         *handlers.CallHandler
	conversationHandler *handlers.ConversationHandler
	relayHandler        *handlers.RelayHandler
	reportHandler       *handlers.ReportHandler

	relay       *realtime.Relay
	roleService *roles.Service

	// 指标收集器
	metricsCollector *metrics.Collector

	// Rate limiter 生命周期管理
	rateLimiterCancel context.CancelFunc
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector("medidash", s.logger)

	// 2. 初始化 Handlers
	s.initHandlers()

	// 3. 启动 HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 4. 启动 Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("roles_enabled", s.deps.DB != nil),
		zap.Bool("jwt_enabled", s.cfg.JWT.Enabled()),
	)

	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initHandlers 初始化所有 handlers。缺失的上游凭证只影响对应端点。
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger).WithVersion(Version)

	if db := s.deps.DB; db != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", db.Ping))
		db.StartHealthCheck(func(stats database.PoolStats) {
			s.metricsCollector.RecordDBConnections(s.cfg.Database.Driver, stats.OpenConnections, stats.Idle)
		})
	}
	if c := s.deps.Cache; c != nil {
		c.WithRecorder(s.metricsCollector)
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", c.Ping))
	}

	// 外呼
	dialerClient := dialer.NewClient(s.cfg.Dialer, s.logger).WithRecorder(s.metricsCollector)
	s.callHandler = handlers.NewCallHandler(dialerClient, s.deps.Publisher, s.logger)

	// 对话引导
	signer := elevenlabs.NewClient(s.cfg.Conversation, s.logger).WithRecorder(s.metricsCollector)
	var store conversation.ContextStore
	if s.deps.Cache != nil {
		store = conversation.NewRedisContextStore(s.deps.Cache, s.cfg.Conversation.ContextTTL)
	}
	s.conversationHandler = handlers.NewConversationHandler(
		conversation.NewService(signer, s.cfg.Conversation.AgentID, store, s.logger),
		s.logger,
	)

	// 语音中继
	s.relay = realtime.NewRelay(s.cfg.Realtime, originPatterns(s.cfg.Server.CORSAllowedOrigins), s.logger).
		WithRecorder(s.metricsCollector)
	s.relayHandler = handlers.NewRelayHandler(s.relay, s.logger)

	// 角色管理：无数据库时参数校验照常，其余请求返回配置错误
	var roleStore *roles.Store
	if s.deps.DB != nil {
		roleStore = roles.NewStore(s.deps.DB.DB())
	} else {
		s.logger.Info("Database not configured, role assignments will fail with a configuration error")
	}
	users := directory.NewClient(s.cfg.Directory, s.logger).WithRecorder(s.metricsCollector)
	s.roleService = roles.NewService(roleStore, users, s.deps.Publisher, s.logger).
		WithRecorder(s.metricsCollector)
	s.roleHandler = handlers.NewRoleHandler(s.roleService, s.logger)

	s.reportHandler = handlers.NewReportHandler(s.logger)

	s.logger.Info("Handlers initialized")
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// routes 注册所有路由（Go 1.22 方法 + 路径模式）
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// 管理端点：启用 JWT 时要求 admin 角色
	admin := s.adminOnly()

	mux.Handle("POST /api/v1/roles", admin(http.HandlerFunc(s.roleHandler.HandleAssign)))
	mux.Handle("GET /api/v1/roles", admin(http.HandlerFunc(s.roleHandler.HandleList)))

	mux.HandleFunc("POST /api/v1/calls", s.callHandler.HandleTrigger)

	mux.HandleFunc("POST /api/v1/conversations", s.conversationHandler.HandleBootstrap)
	mux.HandleFunc("GET /api/v1/conversations/{id}/context", s.conversationHandler.HandleContext)

	mux.HandleFunc("GET /api/v1/realtime", s.relayHandler.HandleRealtime)
	mux.Handle("GET /api/v1/relay/sessions", admin(http.HandlerFunc(s.relayHandler.HandleListSessions)))

	mux.HandleFunc("GET /api/v1/reports/templates", s.reportHandler.HandleListTemplates)
	mux.HandleFunc("GET /api/v1/reports/templates/{type}", s.reportHandler.HandleTemplate)
	mux.HandleFunc("POST /api/v1/reports/{type}/validate", s.reportHandler.HandleValidate)

	return mux
}

// adminOnly 返回管理端点的认证中间件；未配置 JWT 时不做校验
func (s *Server) adminOnly() Middleware {
	if !s.cfg.JWT.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}
	if s.deps.DB == nil {
		// 无角色表时无法判断 admin，只校验令牌
		return JWTAuth(s.cfg.JWT, s.logger)
	}
	jwtAuth := JWTAuth(s.cfg.JWT, s.logger)
	requireAdmin := RequireAdmin(s.roleService, s.logger)
	return func(next http.Handler) http.Handler {
		return jwtAuth(requireAdmin(next))
	}
}

// originPatterns 把 CORS 来源转换为 websocket.AcceptOptions 使用的 host 模式。
// 与 CORS 一致，空列表表示允许任意来源。
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		if o = strings.TrimRight(o, "/"); o != "" {
			patterns = append(patterns, o)
		}
	}
	if len(patterns) == 0 {
		return []string{"*"}
	}
	return patterns
}

// handler 构建带中间件链的根 handler
func (s *Server) handler(ctx context.Context) http.Handler {
	return Chain(s.routes(),
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		OTelTracing(),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(ctx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	)
}

// startHTTPServer 启动 HTTP 服务器
func (s *Server) startHTTPServer() error {
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	serverConfig := server.Config{
		Name:            "api",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(s.handler(rateLimiterCtx), serverConfig, s.logger)
	s.httpManager.OnShutdown(s.relay.Registry().CloseAll)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Name:            "metrics",
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 等待关闭信号并优雅关闭
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown(s.metricsManager)
	}

	s.Shutdown()
}

// Shutdown 优雅关闭所有服务与外部连接
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	for _, mgr := range []*server.Manager{s.httpManager, s.metricsManager} {
		if mgr == nil {
			continue
		}
		if err := mgr.Shutdown(ctx); err != nil {
			s.logger.Error("Server shutdown error", zap.Error(err))
		}
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Close(); err != nil {
			s.logger.Error("Event publisher close error", zap.Error(err))
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Close(); err != nil {
			s.logger.Error("Cache close error", zap.Error(err))
		}
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Database close error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
