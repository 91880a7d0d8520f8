package signal

import "github.com/dkeye/Coedit/internal/app/orch"

const eventPing orch.EventType = "ping"

// handlePing answers application level pings without involving the relay.
func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	_ = conn.TrySend([]byte(`{"type":"pong"}`))
}
