package orch

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain applies mw to every handler of the table, first middleware outermost.
func Chain(handlers map[EventType]Handler, mw ...Middleware) map[EventType]Handler {
	out := make(map[EventType]Handler, len(handlers))
	for ev, h := range handlers {
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		out[ev] = h
	}
	return out
}

// RequireIdentity drops the whole connection, not just the event, when the
// sender has no authenticated identity.
func RequireIdentity(next Handler) Handler {
	return func(c *Context) error {
		if !c.Identity().Authenticated() {
			c.Abort()
			return ErrAuthRequired
		}
		return next(c)
	}
}
