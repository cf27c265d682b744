// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 realtime 实现浏览器与 OpenAI Realtime 之间的 WebSocket 中继。

# 会话生命周期

每个客户端连接对应一个 Session，状态依次为
Idle → Connecting → Active → Closing → Terminated：

  - Connecting：携带 Bearer 凭据与 OpenAI-Beta 头拨号上游，成功后立即发送
    一条 session.update，在此之前不转发任何客户端数据。
  - Active：两个 goroutine 分别按到达顺序原样转发两个方向的帧，保留消息类型。
  - Closing：任一侧关闭或出错即进入。客户端关闭时以正常状态关闭上游；
    上游正常关闭时以正常状态关闭客户端；上游出错时先向客户端发送
    {"type":"error","error":{"message":...}}，再以内部错误状态关闭客户端。
  - Terminated：两端均已关闭，会话从 Registry 移除。

不重连、不重试、不缓冲。

# 核心类型

  - Relay：HTTP 入口，持有 Registry。
  - Registry：进程内会话表，供 /api/v1/relay/sessions 只读查询与停机时统一关闭。
  - SessionUpdate：由 config.RealtimeConfig 生成首条配置消息。
*/
package realtime
