// =============================================================================
// 📦 Medidash 默认配置
// =============================================================================
// 提供所有配置项的合理默认值；上游凭证默认留空
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:       DefaultServerConfig(),
		Database:     DefaultDatabaseConfig(),
		Redis:        DefaultRedisConfig(),
		Log:          DefaultLogConfig(),
		Telemetry:    DefaultTelemetryConfig(),
		Dialer:       DefaultDialerConfig(),
		Realtime:     DefaultRealtimeConfig(),
		Conversation: DefaultConversationConfig(),
		Directory:    DefaultDirectoryConfig(),
		Events:       DefaultEventsConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:           8080,
		MetricsPort:        9091,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     200,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Name:            "postgres",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      false,
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
		File: LogFileConfig{
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "medidash",
		SampleRate:   0.1,
	}
}

// DefaultDialerConfig 返回默认拨号服务配置
func DefaultDialerConfig() DialerConfig {
	return DialerConfig{
		DefaultCampaign: "Outbound",
		DefaultClientID: "default",
		CountryCode:     "+91",
		Timeout:         30 * time.Second,
	}
}

// DefaultRealtimeConfig 返回默认语音中继配置
func DefaultRealtimeConfig() RealtimeConfig {
	return RealtimeConfig{
		URL:                     "wss://api.openai.com/v1/realtime",
		Model:                   "gpt-4o-realtime-preview-2024-10-01",
		Voice:                   "alloy",
		InputAudioFormat:        "pcm16",
		OutputAudioFormat:       "pcm16",
		TranscriptionModel:      "whisper-1",
		VADThreshold:            0.5,
		VADPrefixPaddingMS:      300,
		VADSilenceDurationMS:    1000,
		Temperature:             0.8,
		MaxResponseOutputTokens: 4096,
		DialTimeout:             15 * time.Second,
	}
}

// DefaultConversationConfig 返回默认对话引导配置
func DefaultConversationConfig() ConversationConfig {
	return ConversationConfig{
		BaseURL:    "https://api.elevenlabs.io",
		Timeout:    30 * time.Second,
		ContextTTL: time.Hour,
	}
}

// DefaultDirectoryConfig 返回默认用户目录配置
func DefaultDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		PageSize: 1000,
		Timeout:  15 * time.Second,
	}
}

// DefaultEventsConfig 返回默认事件配置
func DefaultEventsConfig() EventsConfig {
	return EventsConfig{
		Exchange: "medidash.events",
	}
}
