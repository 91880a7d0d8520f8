package orch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Coedit/internal/app"
	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/domain"
)

func TestCollab_ChangeReachesOthersOnly(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")

	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})

	got := a.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, "peer:joined", got[0]["type"])
	assert.Equal(t, "b@example.com", got[0]["peer"])
	assert.Empty(t, b.conn.take(t))

	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1", "change": "X"})

	got = b.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"type": "doc:change", "change": "X"}, got[0])
	assert.Empty(t, a.conn.take(t))
}

func TestCollab_SaveRelaysAsChange(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})
	a.conn.take(t)

	change := map[string]any{"ops": []any{"insert", 3.0, "hi"}}
	send(t, o, b, map[string]any{"type": "doc:save", "id": "doc1", "change": change})

	got := a.conn.take(t)
	require.Len(t, got, 1)
	assert.Equal(t, "doc:change", got[0]["type"])
	assert.Equal(t, change, got[0]["change"])
	assert.Empty(t, b.conn.take(t))
}

func TestCollab_SingleMemberBroadcastDeliversNothing(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1", "change": "X"})
	assert.Empty(t, a.conn.take(t))
}

func TestCollab_RoomsAreIsolated(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	c := connect(t, o, "c", "c@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, c, map[string]any{"type": "joined", "id": "doc2"})
	a.conn.take(t)

	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1", "change": "X"})
	assert.Len(t, b.conn.take(t), 1)
	assert.Empty(t, c.conn.take(t))
}

func TestCollab_UnauthenticatedJoinDisconnects(t *testing.T) {
	o := newCollab()
	anon := connect(t, o, "anon", "")

	send(t, o, anon, map[string]any{"type": "joined", "id": "doc1"})

	assert.True(t, anon.conn.isClosed())
	assert.Empty(t, o.Rooms.MembersOf("doc1"))
	_, ok := o.Registry.GetSession(anon.id)
	assert.False(t, ok)
}

func TestCollab_MalformedPayloadKeepsConnection(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})
	a.conn.take(t)

	send(t, o, a, map[string]any{"type": "joined"})
	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1"})
	send(t, o, a, map[string]any{"type": "doc:change", "id": 42, "change": "X"})
	send(t, o, a, map[string]any{"type": "peer:intro", "id": "sess1"})

	assert.False(t, a.conn.isClosed())
	assert.Empty(t, b.conn.take(t))
	assert.Equal(t, []domain.RoomID{"doc1"}, o.Rooms.RoomsOf(a.id))
}

func TestCollab_DisconnectNotifiesRemainingMembers(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	c := connect(t, o, "c", "c@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, a, map[string]any{"type": "joined", "id": "doc2"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, c, map[string]any{"type": "joined", "id": "doc2"})
	send(t, o, c, map[string]any{"type": "joined", "id": "doc3"})
	b.conn.take(t)
	c.conn.take(t)

	require.True(t, o.Disconnect(a.id))

	assert.Equal(t, []map[string]any{{"type": "peer:left", "peer": "a@example.com"}}, b.conn.take(t))
	assert.Equal(t, []map[string]any{{"type": "peer:left", "peer": "a@example.com"}}, c.conn.take(t))
	assert.Empty(t, o.Rooms.RoomsOf(a.id))
	assert.Equal(t, []domain.ConnID{"b"}, o.Rooms.MembersOf("doc1"))
	assert.Equal(t, []domain.RoomID{"doc2", "doc3"}, o.Rooms.RoomsOf(c.id))
	assert.True(t, a.conn.isClosed())

	assert.False(t, o.Disconnect(a.id))
	assert.Empty(t, b.conn.take(t))
}

func TestCollab_DoubleJoinSingleNotification(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})

	assert.Len(t, b.conn.take(t), 1)
	assert.Equal(t, []domain.ConnID{"a", "b"}, o.Rooms.MembersOf("doc1"))

	o.Disconnect(a.id)
	assert.Len(t, b.conn.take(t), 1)
}

func TestCollab_UnknownEventIsDropped(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	send(t, o, a, map[string]any{"type": "peer:offer", "peerId": "x", "signal": "s"})
	assert.False(t, a.conn.isClosed())
}

func TestCollab_SlowConsumerKicked(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	c := connect(t, o, "c", "c@example.com")
	for _, cl := range []client{a, b, c} {
		send(t, o, cl, map[string]any{"type": "joined", "id": "doc1"})
	}
	a.conn.take(t)
	b.conn.take(t)

	b.conn.setFull(true)
	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1", "change": "X"})

	assert.True(t, b.conn.isClosed())
	assert.Equal(t, []domain.ConnID{"a", "c"}, o.Rooms.MembersOf("doc1"))
	got := c.conn.take(t)
	require.Len(t, got, 2)
	assert.Equal(t, "doc:change", got[0]["type"])
	assert.Equal(t, map[string]any{"type": "peer:left", "peer": "b@example.com"}, got[1])
}

func TestCollab_DropPolicyKeepsSlowConsumer(t *testing.T) {
	o := orch.New(orch.Options{Strategy: orch.Collab{}, Policy: app.DropPolicy{}})
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})

	b.conn.setFull(true)
	send(t, o, a, map[string]any{"type": "doc:change", "id": "doc1", "change": "X"})

	assert.False(t, b.conn.isClosed())
	assert.Equal(t, []domain.ConnID{"a", "b"}, o.Rooms.MembersOf("doc1"))
}

func TestCollab_EvictRoom(t *testing.T) {
	o := newCollab()
	a := connect(t, o, "a", "a@example.com")
	b := connect(t, o, "b", "b@example.com")
	send(t, o, a, map[string]any{"type": "joined", "id": "doc1"})
	send(t, o, b, map[string]any{"type": "joined", "id": "doc1"})

	assert.Equal(t, 2, o.EvictRoom("doc1"))
	assert.Empty(t, o.Rooms.List())
	assert.False(t, a.conn.isClosed())
}
