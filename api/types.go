package api

import (
	"encoding/json"
)

// =============================================================================
// 角色分配类型
// =============================================================================

// AssignRoleRequest 表示 POST /api/v1/roles 请求体。
type AssignRoleRequest struct {
	// 目录中的用户邮箱（匹配时忽略大小写）
	Email string `json:"email"`
	// 角色名：admin, moderator, user
	Role string `json:"role"`
}

// =============================================================================
// 外呼类型
// =============================================================================

// TriggerCallRequest 表示 POST /api/v1/calls 请求体。
type TriggerCallRequest struct {
	// 本地号码或带 + 号的国际号码
	PhoneNumber string `json:"phoneNumber"`
	// 外呼活动标识
	Campaign string `json:"campaign,omitempty"`
	// 调用方客户端标识
	ClientID string `json:"clientId,omitempty"`
}

// TriggerCallResponse 外呼成功响应，Response 为拨号服务的原始响应体文本。
type TriggerCallResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

// CallFailureResponse 拨号服务返回非 2xx 时的响应
type CallFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	// 上游 HTTP 状态码
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// 对话引导类型
// =============================================================================

// BootstrapRequest 表示 POST /api/v1/conversations 请求体。
// SearchResults 原样保存，不做结构校验。
type BootstrapRequest struct {
	SearchResults json.RawMessage `json:"searchResults"`
	SearchQuery   string          `json:"searchQuery"`
}
