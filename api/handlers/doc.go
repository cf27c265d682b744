// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 Medidash HTTP API 的请求处理器实现。

# 概述

每个 Handler 只做请求解码、调用领域服务与响应编码，业务规则位于
internal 下的领域包。所有 Handler 均遵循标准 net/http 接口，由
cmd/medidash 的 ServeMux 按 Go 1.22 路由模式注册。

# 核心类型

  - RoleHandler         ：角色分配与查询（/api/v1/roles）
  - CallHandler         ：外呼触发（/api/v1/calls）
  - ConversationHandler ：对话引导与上下文查询（/api/v1/conversations）
  - RelayHandler        ：语音中继入口与会话快照（/api/v1/realtime）
  - ReportHandler       ：CSV 报表模板下载与上传校验（/api/v1/reports）
  - HealthHandler       ：服务健康检查（/health, /healthz, /ready, /version）
  - ResponseWriter      ：捕获状态码，支持 Hijack 以便 WebSocket 升级

# 响应格式

成功响应为 {success:true, data}；错误响应为
{success:false, error, code, details}。外呼成功响应与对话引导响应
保持前端约定的专用结构。ErrorCode 到 HTTP 状态码的映射见
mapErrorCodeToHTTPStatus，其中 CONFLICT 映射为 400。
*/
package handlers
