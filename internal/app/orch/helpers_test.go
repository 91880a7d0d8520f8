package orch_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnectionClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) setFull(v bool) {
	f.mu.Lock()
	f.full = v
	f.mu.Unlock()
}

// take returns and clears the decoded frames received so far.
func (f *fakeConn) take(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	frames := f.frames
	f.frames = nil
	f.mu.Unlock()

	out := make([]map[string]any, 0, len(frames))
	for _, fr := range frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

type client struct {
	id   domain.ConnID
	conn *fakeConn
}

// connect registers a connection and discards its hello frame.
func connect(t *testing.T, o *orch.Orchestrator, id, handle string) client {
	t.Helper()
	c := client{id: domain.ConnID(id), conn: &fakeConn{}}
	o.Connect(core.NewMemberSession(domain.NewMember(c.id, domain.Identity{Handle: handle}), c.conn), nil)
	hello := c.conn.take(t)
	require.Len(t, hello, 1)
	require.Equal(t, "hello", hello[0]["type"])
	return c
}

func send(t *testing.T, o *orch.Orchestrator, from client, msg map[string]any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	ev, err := orch.ParseEvent(raw)
	require.NoError(t, err)
	o.Dispatch(from.id, ev)
}

func newCollab() *orch.Orchestrator {
	return orch.New(orch.Options{Strategy: orch.Collab{}})
}

func newSignaling(trust bool) *orch.Orchestrator {
	return orch.New(orch.Options{Strategy: orch.Signaling{}, TrustClientIDs: trust})
}
