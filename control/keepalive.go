package control

import (
	"context"
	"time"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
)

// KeepaliveTask emits a keepalive on the control channel at a fixed
// interval for as long as ctx is alive, resetting the peer's control
// channel retransmit budget on receipt (§4.5, §4.3 node obligation
// cross-reference via the reliable channel's Keepalive handling).
type KeepaliveTask struct {
	tr        transport.Transport
	sessionID [16]byte
	interval  time.Duration
}

// NewKeepaliveTask builds a task that sends a keepalive every interval.
func NewKeepaliveTask(tr transport.Transport, sessionID [16]byte, interval time.Duration) *KeepaliveTask {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &KeepaliveTask{tr: tr, sessionID: sessionID, interval: interval}
}

// Run blocks, emitting keepalives until ctx is done. Send failures are
// logged and do not stop the loop; a transient transport hiccup should
// not kill an otherwise healthy session.
func (k *KeepaliveTask) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ka := message.Keepalive{SessionID: k.sessionID, TickMS: uint64(time.Now().UnixMilli())}
			if err := sendEnvelope(ctx, k.tr, ka); err != nil {
				logger.Warn("keepalive send failed", logger.Error(err))
			}
		}
	}
}
