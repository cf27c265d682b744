// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 dialer 封装外呼拨号服务：号码规范化与表单 POST 触发。

# 核心类型

  - NormalizePhoneNumber：去除所有空白字符，再剥离开头的国家码前缀。
  - Client：向固定的拨号地址发送 application/x-www-form-urlencoded 请求，
    字段为 api_key、phone_number、campaign、client_id。
  - UpstreamStatusError：上游返回非 2xx 时携带状态码与原始响应体。

请求不重试。未配置 API Key 时 TriggerCall 直接返回配置错误，不发起网络请求。
*/
package dialer
