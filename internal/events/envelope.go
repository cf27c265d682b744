package events

import (
	"time"

	"github.com/google/uuid"
)

// 事件类型，同时作为路由键
const (
	TypeRoleAssigned  = "role.assigned"
	TypeCallTriggered = "call.triggered"
)

// Meta 事件元数据
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// Envelope 事件信封
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope 创建事件，correlationID 通常为请求 ID
func NewEnvelope(eventType, correlationID string, data any) Envelope {
	return Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          eventType,
			OccurredAt:    time.Now().UTC(),
			CorrelationID: correlationID,
		},
		Data: data,
	}
}

// RoleAssigned role.assigned 事件数据
type RoleAssigned struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	AssignedBy string `json:"assignedBy,omitempty"`
}

// CallTriggered call.triggered 事件数据，号码只保留末四位
type CallTriggered struct {
	PhoneSuffix string `json:"phoneSuffix"`
	Campaign    string `json:"campaign"`
	ClientID    string `json:"clientId"`
}

// PhoneSuffix 返回号码末四位
func PhoneSuffix(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}
