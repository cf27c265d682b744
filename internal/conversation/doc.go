// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 conversation 负责语音助手会话的引导：获取 ElevenLabs 签名地址，
生成会话 ID，并把搜索上下文缓存到 Redis，供前端按会话 ID 取回。

会话 ID 形如 conv_<毫秒时间戳>_<9 位 base36>，不使用密码学随机数，
也不做冲突检查。上下文缓存失败只记录日志，不影响引导结果。
*/
package conversation
