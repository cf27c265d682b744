// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、第三方调用、
语音中继、角色分配、缓存与数据库连接池。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - 上游指标：按 service（dialer、elevenlabs、supabase、openai_realtime）
    统计调用次数与耗时。
  - 中继指标：活跃会话 Gauge、按结束原因统计的会话数、按方向统计的转发帧数。
  - 角色指标：按 role/outcome 统计的分配次数。
  - 缓存与数据库：命中/未命中计数、连接池 Gauge。
*/
package metrics
