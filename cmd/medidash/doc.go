// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
Package main 提供 Medidash 服务端程序入口。

# 概述

cmd/medidash 是医疗仪表盘后端的可执行入口，提供 HTTP API 服务、
数据库迁移、健康检查和版本查询等子命令。程序支持 YAML 配置文件与
MEDIDASH_ 环境变量加载、结构化日志（zap + lumberjack 滚动文件）、
Prometheus 指标采集以及 OpenTelemetry 链路追踪。

# 核心类型

  - Server       ：主服务器，管理 HTTP、Metrics 双端口及优雅关闭
  - Dependencies ：数据库、Redis、消息总线等外部连接，均可缺省
  - Middleware   ：HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve（启动服务）、migrate（数据库迁移）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    Metrics、OTelTracing、CORS、RateLimiter（基于 IP）
  - 管理端点：配置 JWT 后由 JWTAuth 与 RequireAdmin 保护
  - 优雅关闭：信号监听 → 关闭中继会话 → 关闭 HTTP → 关闭 Metrics → 释放连接
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
