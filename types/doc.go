// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
Package types 提供 medidash 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 api、internal 下的各业务
模块提供统一的错误码与 Context 传播契约。

# 核心类型

  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码、上游服务名与上游响应详情
  - ConfigurationError：缺失凭证时的配置错误（在任何网络调用前返回）

# 主要能力

  - Context 传播：WithRequestID / WithUserID / WithUserEmail / WithRoles
  - 错误链提取：AsError / GetErrorCode（基于 errors.As）
*/
package types
