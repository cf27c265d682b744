// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 cache 提供基于 Redis 的缓存管理，用于保存对话引导时的搜索上下文。

# 核心类型

  - Manager：封装 go-redis 客户端，提供 Get/Set/Delete/Ping 与
    GetJSON/SetJSON；所有键自动加上 KeyPrefix。
  - Config：地址、密码、连接池、键前缀与默认 TTL。
  - Recorder：命中/未命中计数接口，由 metrics.Collector 实现。

客户端不做重试，失败立即返回给调用方。ErrCacheMiss 与 IsCacheMiss
用于区分未命中与连接错误。
*/
package cache
