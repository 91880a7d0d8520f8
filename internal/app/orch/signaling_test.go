package orch_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/domain"
)

func TestSignaling_OfferReachesIntroducedPeer(t *testing.T) {
	o := newSignaling(true)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, b, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "p1"})
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "a1"})

	got := b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"type": "peer:joined", "id": "a1"}, got[0])

	signal := map[string]any{"type": "offer", "sdp": "v=0"}
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "p1", "fromId": "a1", "signal": signal})

	got = b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"type": "peer:offer", "peerId": "a1", "signal": signal}, got[0])
	assert.Empty(t, a.conn.take(t))

	send(t, o, b, map[string]any{"type": "peer:response", "peerId": "a1", "fromId": "p1", "signal": "answer"})
	got = a.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"type": "peer:response", "peerId": "p1", "signal": "answer"}, got[0])
}

func TestSignaling_HardenedModeUsesConnectionID(t *testing.T) {
	o := newSignaling(false)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, b, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "whatever"})
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "b"})

	got := b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["id"])

	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "b", "fromId": "spoofed", "signal": "S"})
	got = b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["peerId"])

	// Client chosen addresses are not claimed in hardened mode.
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "whatever", "signal": "S"})
	assert.Empty(t, b.conn.take(t))
}

func TestSignaling_UnknownTargetIsNoop(t *testing.T) {
	o := newSignaling(true)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "a1"})
	b.conn.take(t)

	roomsBefore := o.Rooms.List()
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "ghost", "fromId": "a1", "signal": "S"})

	assert.Empty(t, a.conn.take(t))
	assert.Empty(t, b.conn.take(t))
	assert.False(t, a.conn.isClosed())
	assert.Equal(t, roomsBefore, o.Rooms.List())
}

func TestSignaling_AddressReleasedOnDisconnect(t *testing.T) {
	o := newSignaling(true)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, b, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "p1"})
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "a1"})
	b.conn.take(t)

	require.True(t, o.Disconnect(b.id))
	// Signaling leaves are silent.
	assert.Empty(t, a.conn.take(t))

	_, ok := o.Directory.Resolve("p1")
	assert.False(t, ok)
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "p1", "signal": "S"})
	assert.Equal(t, []domain.ConnID{"a"}, o.Rooms.MembersOf("sess1"))

	c := connect(t, o, "c", "c@example.com")
	send(t, o, c, map[string]any{"type": "peer:intro", "id": "sess2", "peerId": "p1"})
	conn, ok := o.Directory.Resolve("p1")
	require.True(t, ok)
	assert.Equal(t, c.id, conn)
}

func TestSignaling_AddressCannotBeHijacked(t *testing.T) {
	o := newSignaling(true)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, b, map[string]any{"type": "peer:intro", "id": "sess1", "peerId": "p1"})
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess2", "peerId": "p1"})

	conn, ok := o.Directory.Resolve("p1")
	require.True(t, ok)
	assert.Equal(t, b.id, conn)
	assert.Empty(t, o.Rooms.RoomsOf(a.id))
	assert.False(t, a.conn.isClosed())
}

func TestSignaling_EveryConnectionIsAddressableByID(t *testing.T) {
	o := newSignaling(false)
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "b", "signal": "S"})
	got := b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["peerId"])
}

func TestSignaling_ValidateSignal(t *testing.T) {
	o := orch.New(orch.Options{
		Strategy: orch.Signaling{},
		ValidateSignal: func(raw json.RawMessage) error {
			if string(raw) == `"bad"` {
				return errors.New("not a signal")
			}
			return nil
		},
	})
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "b", "signal": "bad"})
	assert.Empty(t, b.conn.take(t))
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "b", "signal": "good"})
	assert.Len(t, b.conn.take(t), 1)
}

func TestSignaling_UnauthenticatedOfferDisconnects(t *testing.T) {
	o := newSignaling(false)
	anon := connect(t, o, "anon", "")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, anon, map[string]any{"type": "peer:offer", "peerId": "b", "signal": "S"})

	assert.True(t, anon.conn.isClosed())
	assert.Empty(t, b.conn.take(t))
	_, ok := o.Directory.Resolve("anon")
	assert.False(t, ok)
}
