package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// State 会话状态
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Direction 帧转发方向
type Direction string

const (
	ClientToUpstream Direction = "client_to_upstream"
	UpstreamToClient Direction = "upstream_to_client"
)

// 会话结束原因
const (
	OutcomeClientClosed   = "client_closed"
	OutcomeUpstreamClosed = "upstream_closed"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeDialFailed     = "dial_failed"
	OutcomeShutdown       = "server_shutdown"
)

// Session 一条客户端连接与一条上游连接
type Session struct {
	ID         string
	RemoteAddr string
	StartedAt  time.Time

	state          atomic.Int32
	clientFrames   atomic.Int64
	upstreamFrames atomic.Int64

	mu       sync.Mutex
	client   *websocket.Conn
	upstream *websocket.Conn

	endOnce sync.Once
	outcome string
}

// SessionInfo 会话快照
type SessionInfo struct {
	ID             string    `json:"id"`
	State          string    `json:"state"`
	RemoteAddr     string    `json:"remote_addr"`
	StartedAt      time.Time `json:"started_at"`
	ClientFrames   int64     `json:"client_frames"`
	UpstreamFrames int64     `json:"upstream_frames"`
}

func newSession(remoteAddr string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		StartedAt:  time.Now(),
	}
}

// State 当前状态
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) attachClient(c *websocket.Conn) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}

func (s *Session) attachUpstream(c *websocket.Conn) {
	s.mu.Lock()
	s.upstream = c
	s.mu.Unlock()
}

// end 只有第一个调用者执行 teardown 并决定结束原因
func (s *Session) end(outcome string, teardown func()) bool {
	ended := false
	s.endOnce.Do(func() {
		s.outcome = outcome
		s.setState(StateClosing)
		teardown()
		ended = true
	})
	return ended
}

// Shutdown 服务停机时关闭两端
func (s *Session) Shutdown() {
	s.end(OutcomeShutdown, func() {
		s.mu.Lock()
		client, upstream := s.client, s.upstream
		s.mu.Unlock()

		if upstream != nil {
			_ = upstream.Close(websocket.StatusNormalClosure, "server shutting down")
		}
		if client != nil {
			_ = client.Close(websocket.StatusGoingAway, "server shutting down")
		}
	})
}

// Info 返回快照
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:             s.ID,
		State:          s.State().String(),
		RemoteAddr:     s.RemoteAddr,
		StartedAt:      s.StartedAt,
		ClientFrames:   s.clientFrames.Load(),
		UpstreamFrames: s.upstreamFrames.Load(),
	}
}
