// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

// Package api 定义 Medidash HTTP API 的请求与响应结构。
//
// # API Overview
//
// Medidash 为医疗仪表盘前端提供以下端点：
//   - POST /api/v1/roles                       按邮箱分配角色
//   - GET  /api/v1/roles?email=                查询用户角色
//   - POST /api/v1/calls                       触发外呼
//   - POST /api/v1/conversations               获取语音助手签名 URL 与对话 ID
//   - GET  /api/v1/conversations/{id}/context  查询对话的搜索上下文
//   - GET  /api/v1/realtime                    语音中继 WebSocket
//   - GET  /api/v1/reports/templates/{type}    下载 CSV 报表模板
//   - POST /api/v1/reports/{type}/validate     校验上传的 CSV
//
// # Authentication
//
// 配置 JWT 密钥后，角色端点与中继会话列表要求 Supabase access token：
//
//	Authorization: Bearer <access_token>
//
// 且调用者需在 user_roles 中持有 admin 角色。
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
