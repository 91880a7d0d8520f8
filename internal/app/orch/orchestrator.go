package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/Coedit/internal/app"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
	"github.com/dkeye/Coedit/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Options configures one relay instance.
type Options struct {
	Strategy Strategy
	Policy   app.Policy
	Metrics  *metrics.Metrics
	// TrustClientIDs forwards client supplied peer ids (intro peerId, offer
	// fromId) as is. When false the sender's connection id is used instead.
	TrustClientIDs bool
	// ValidateSignal, when set, rejects signaling blobs it returns an error for.
	ValidateSignal func(json.RawMessage) error
}

// Orchestrator is one relay instance. Every state change goes through mu, so
// handlers observe and mutate the membership one event at a time.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     core.Membership
	Directory *app.Directory
	Policy    app.Policy

	mu             sync.Mutex
	strategy       Strategy
	handlers       map[EventType]Handler
	metrics        *metrics.Metrics
	trustClientIDs bool
	validateSignal func(json.RawMessage) error
}

func New(opts Options) *Orchestrator {
	if opts.Strategy == nil {
		opts.Strategy = Collab{}
	}
	if opts.Policy == nil {
		opts.Policy = app.KickPolicy{}
	}
	return &Orchestrator{
		Registry:       app.NewRegistry(),
		Rooms:          app.NewTracker(),
		Directory:      app.NewDirectory(),
		Policy:         opts.Policy,
		strategy:       opts.Strategy,
		handlers:       Chain(opts.Strategy.Handlers(), RequireIdentity),
		metrics:        opts.Metrics,
		trustClientIDs: opts.TrustClientIDs,
		validateSignal: opts.ValidateSignal,
	}
}

func (o *Orchestrator) Mode() domain.Mode { return o.strategy.Mode() }

// Connect registers a new connection and tells it its own address.
func (o *Orchestrator) Connect(sess core.MemberSession, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := sess.Meta().ID
	o.Registry.Bind(sess, cancel)
	if err := o.Directory.Claim(id, domain.Address(id)); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("claim own address")
	}
	o.sendLocked(id, helloMsg{Type: EventHello, ID: domain.Address(id), Mode: o.Mode()}, EventHello)
	o.refreshGaugesLocked()
}

// Dispatch runs the handler registered for ev on behalf of connection id.
// Failures are scoped to the event; none of them is returned to the caller.
func (o *Orchestrator) Dispatch(id domain.ConnID, ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	mode := string(o.Mode())
	logger := log.With().Str("module", "orch").Str("mode", mode).Str("conn", string(id)).Str("event", string(ev.Type)).Logger()

	sess, ok := o.Registry.GetSession(id)
	if !ok {
		logger.Debug().Msg("event from unbound connection")
		return
	}
	o.metrics.Event(mode, string(ev.Type))

	var err error
	if h, ok := o.handlers[ev.Type]; ok {
		err = h(&Context{Session: sess, Event: ev, relay: o})
	} else {
		err = ErrUnknownEvent
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrAuthRequired):
		logger.Warn().Msg("unauthenticated event, connection dropped")
		o.metrics.Drop(mode, metrics.DropAuthRequired)
	case errors.Is(err, ErrUnknownTarget):
		logger.Debug().Err(err).Msg("no occupant for target, dropped")
		o.metrics.Drop(mode, metrics.DropUnknownTarget)
	case errors.Is(err, ErrUnknownEvent):
		logger.Warn().Msg("unknown event")
		o.metrics.Drop(mode, metrics.DropUnknownEvent)
	default:
		logger.Warn().Err(err).Msg("event discarded")
		o.metrics.Drop(mode, metrics.DropMalformed)
	}
}

// Shutdown disconnects every live connection.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, sess := range o.Registry.Snapshot() {
		o.disconnectLocked(sess.Meta().ID)
	}
}

func (o *Orchestrator) refreshGaugesLocked() {
	mode := string(o.Mode())
	o.metrics.SetConnections(mode, o.Registry.Count())
	o.metrics.SetRooms(mode, o.Rooms.Len())
}

func encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}

// broadcastLocked sends v to every member of room except from. Members the
// policy decides to kick are disconnected after the fan out.
func (o *Orchestrator) broadcastLocked(from domain.ConnID, room domain.RoomID, v any, ev EventType) core.PublishResult {
	res := core.PublishResult{}
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode broadcast")
		return res
	}
	for _, id := range o.Rooms.MembersOf(room) {
		if id == from {
			continue
		}
		sess, ok := o.Registry.GetSession(id)
		if !ok {
			continue
		}
		if err := sess.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, sess)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "orch").Str("from", string(from)).Str("room", string(room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	o.metrics.Delivered(string(o.Mode()), string(ev), res.SendTo)
	o.applyPolicyLocked(res.Dropped)
	return res
}

// sendLocked queues v to a single connection.
func (o *Orchestrator) sendLocked(to domain.ConnID, v any, ev EventType) bool {
	sess, ok := o.Registry.GetSession(to)
	if !ok {
		return false
	}
	frame, err := encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode frame")
		return false
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		o.applyPolicyLocked([]core.MemberSession{sess})
		return false
	}
	o.metrics.Delivered(string(o.Mode()), string(ev), 1)
	return true
}

func (o *Orchestrator) applyPolicyLocked(dropped []core.MemberSession) {
	mode := string(o.Mode())
	for _, slow := range dropped {
		o.metrics.Drop(mode, metrics.DropBackpressure)
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("conn", string(slow.Meta().ID)).Msg("slow consumer kicked")
			o.disconnectLocked(slow.Meta().ID)
		case app.DropFrame, app.NoAction:
		}
	}
}
