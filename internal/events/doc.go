// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

// Package events 发布审计事件（role.assigned、call.triggered）到 AMQP topic 交换机。
// 未配置 AMQP 地址时使用 Nop 发布器，业务流程不依赖事件投递结果。
package events
