package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddListRemove(t *testing.T) {
	reg := NewRegistry()

	first := newSession("10.0.0.1:5000")
	second := newSession("10.0.0.2:5000")
	second.StartedAt = first.StartedAt.Add(time.Second)
	second.setState(StateActive)
	second.clientFrames.Add(4)

	reg.Add(second)
	reg.Add(first)
	require.Equal(t, 2, reg.Count())

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "idle", list[0].State)
	assert.Equal(t, "active", list[1].State)
	assert.Equal(t, int64(4), list[1].ClientFrames)

	reg.Remove(first.ID)
	reg.Remove("missing")
	assert.Equal(t, 1, reg.Count())
}

func TestSession_EndRunsOnce(t *testing.T) {
	s := newSession("")
	calls := 0

	assert.True(t, s.end(OutcomeClientClosed, func() { calls++ }))
	assert.False(t, s.end(OutcomeUpstreamError, func() { calls++ }))

	assert.Equal(t, 1, calls)
	assert.Equal(t, OutcomeClientClosed, s.outcome)
	assert.Equal(t, StateClosing, s.State())
}

func TestSession_ShutdownWithoutConnections(t *testing.T) {
	s := newSession("")
	s.Shutdown()
	assert.Equal(t, OutcomeShutdown, s.outcome)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestErrorFrame(t *testing.T) {
	assert.JSONEq(t, `{"type":"error","error":{"message":"boom"}}`, string(ErrorFrame("boom")))
}
