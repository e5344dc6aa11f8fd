package control

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

// NonceSize is the length of a control-envelope nonce.
const NonceSize = 16

// replayWindowTTL bounds how long an acknowledged nonce is remembered
// for replay detection, per §9's "bound it (e.g. a sliding window)"
// resolution: rather than an unbounded set, seen nonces age out of the
// session.NonceCache after this long.
const replayWindowTTL = 10 * time.Minute

// ChannelConfig tunes a ReliableChannel's retransmit behavior (§4.5).
type ChannelConfig struct {
	MaxAttempts   int
	BaseTimeout   time.Duration
	DropThreshold int
}

// DefaultChannelConfig returns the protocol's documented defaults.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		MaxAttempts:   5,
		BaseTimeout:   200 * time.Millisecond,
		DropThreshold: 5,
	}
}

// ReliableChannel layers ordered, authenticated, retransmitting delivery
// over an unreliable transport.Transport, for one session's lifetime.
type ReliableChannel struct {
	tr        transport.Transport
	crypto    *Crypto
	sessionID [16]byte
	cfg       ChannelConfig
	seq       uint64
	seen      *session.NonceCache
	keyID     string
}

// NewReliableChannel builds a channel bound to one session's control key
// and transport.
func NewReliableChannel(tr transport.Transport, crypto *Crypto, sessionID [16]byte, cfg ChannelConfig) *ReliableChannel {
	if cfg.MaxAttempts == 0 {
		cfg = DefaultChannelConfig()
	}
	return &ReliableChannel{
		tr:        tr,
		crypto:    crypto,
		sessionID: sessionID,
		cfg:       cfg,
		seen:      session.NewNonceCache(replayWindowTTL),
		keyID:     hex.EncodeToString(sessionID[:]),
	}
}

// Close releases the channel's replay-nonce cache, stopping its
// background GC loop. Safe to call once the channel is no longer in use.
func (c *ReliableChannel) Close() {
	c.seen.DeleteKey(c.keyID)
	c.seen.Close()
}

func randomNonce(size int) ([]byte, error) {
	n := make([]byte, size)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("control: generate nonce: %w", err)
	}
	return n, nil
}

// backoff computes base * 2^(attempt-1), capped at base * 4.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > 2 {
		shift = 2 // 2^2 = 4, the documented cap
	}
	return base << uint(shift)
}

// SendReliable sends one control operation and retransmits with
// exponential backoff until it is acknowledged, a replay is detected, or
// the retransmit budget is exhausted (§4.5 send algorithm).
func (c *ReliableChannel) SendReliable(ctx context.Context, op message.ControlOp, payload []byte) (*message.Acknowledge, error) {
	c.seq++
	seq := c.seq

	nonce, err := randomNonce(NonceSize)
	if err != nil {
		return nil, err
	}
	mac, err := c.crypto.MACForPayload(seq, c.sessionID, payload)
	if err != nil {
		return nil, message.New(message.CodeControlAuthentication, err.Error())
	}

	env := message.Control{
		SessionID:   c.sessionID,
		Seq:         seq,
		Nonce:       nonce,
		TimestampMS: uint64(time.Now().UnixMilli()),
		Op:          op,
		Payload:     payload,
		MAC:         mac,
	}

	attempt := 0
	for {
		attempt++

		if ctx.Err() != nil {
			return nil, message.New(message.CodeControlCancelled, "context cancelled")
		}

		if err := sendEnvelope(ctx, c.tr, env); err != nil {
			metrics.MessagesProcessed.WithLabelValues("control", "failure").Inc()
			return nil, message.New(message.CodeControlAuthentication, err.Error())
		}

		recvCtx, cancel := context.WithTimeout(ctx, backoff(c.cfg.BaseTimeout, attempt))
		data, err := c.tr.Recv(recvCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, message.New(message.CodeControlCancelled, "context cancelled")
			}
			if attempt >= c.cfg.MaxAttempts || attempt >= c.cfg.DropThreshold {
				metrics.MessagesProcessed.WithLabelValues("control", "failure").Inc()
				return nil, message.New(message.CodeControlRetransmitExceeded, "control channel retransmit limit exceeded")
			}
			continue
		}

		typ, body, err := message.Unpack(data)
		if err != nil {
			continue
		}

		switch typ {
		case message.TypeKeepalive:
			attempt = 0
			continue

		case message.TypeControlAck:
			var ack message.Acknowledge
			if err := wire.Decode(body, &ack); err != nil {
				continue
			}
			if ack.Seq == seq {
				c.seen.Seen(c.keyID, string(ack.Nonce))
				metrics.NonceValidations.WithLabelValues("valid").Inc()
				metrics.MessagesProcessed.WithLabelValues("control", "success").Inc()
				return &ack, nil
			}
			if c.seen.Seen(c.keyID, string(ack.Nonce)) {
				metrics.ReplayAttacksDetected.Inc()
				metrics.MessagesProcessed.WithLabelValues("control", "failure").Inc()
				return nil, message.New(message.CodeControlReplay, "replay detected")
			}
			continue

		default:
			logger.Debug("control channel ignoring unexpected message", logger.String("type", string(typ)))
			continue
		}
	}
}
