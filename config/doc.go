// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

// Package config 提供 medidash 的配置管理功能。
//
// 配置来源按优先级依次为：内置默认值、YAML 文件、带 MEDIDASH 前缀的
// 环境变量，最后用 OPENAI_API_KEY、SUPABASE_URL 等通用变量填补仍为空的
// 上游凭证。缺失的凭证不会阻止服务启动，只会让对应端点返回配置错误。
package config
