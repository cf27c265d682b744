// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 medidash 提供 TracerProvider、MeterProvider 以及第三方调用的客户端 span。
// 遥测关闭时使用 noop 实现，不连接任何外部服务。
package telemetry
