package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

// Handler processes one inbound event. It runs with the relay lock held and
// must not block.
type Handler func(c *Context) error

// Context is the per-event view handed to handlers.
type Context struct {
	Session core.MemberSession
	Event   Event

	relay *Orchestrator
}

func (c *Context) Conn() domain.ConnID { return c.Session.Meta().ID }

func (c *Context) Identity() domain.Identity { return c.Session.Meta().Identity }

// Bind decodes the event payload into v.
func (c *Context) Bind(v any) error {
	if err := json.Unmarshal(c.Event.Raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// Join adds the sender to room and reports whether it was not a member yet.
func (c *Context) Join(room domain.RoomID) bool {
	return c.relay.joinLocked(c.Conn(), room)
}

// Broadcast sends v to every other member of room.
func (c *Context) Broadcast(room domain.RoomID, v any) core.PublishResult {
	return c.relay.broadcastLocked(c.Conn(), room, v, c.Event.Type)
}

// SendTo queues v for a single connection.
func (c *Context) SendTo(to domain.ConnID, v any) bool {
	return c.relay.sendLocked(to, v, c.Event.Type)
}

// Abort disconnects the sender.
func (c *Context) Abort() {
	c.relay.disconnectLocked(c.Conn())
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedPayload, field)
}
