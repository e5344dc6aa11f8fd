package control

import (
	"context"
	"fmt"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

func sendEnvelope(ctx context.Context, tr transport.Transport, env message.Envelope) error {
	data, err := message.Pack(env)
	if err != nil {
		return fmt.Errorf("control: encode %s: %w", env.EnvelopeType(), err)
	}
	if err := tr.Send(ctx, data); err != nil {
		return fmt.Errorf("control: send %s: %w", env.EnvelopeType(), err)
	}
	metrics.SessionMessageSize.WithLabelValues("outbound").Observe(float64(len(data)))
	return nil
}

// Handler processes one verified control operation and returns the
// outcome that gets MAC-authenticated and acked back to the sender.
type Handler func(op message.ControlOp, payload []byte) (ok bool, detail string, responsePayload []byte)

// Responder answers Control envelopes on the node side of a session:
// invalid MACs are dropped silently (the sender's retransmit handles
// it), valid ones are dispatched to handler and acked.
type Responder struct {
	tr        transport.Transport
	crypto    *Crypto
	sessionID [16]byte
}

// NewResponder builds a Responder bound to one session's control key and
// transport.
func NewResponder(tr transport.Transport, crypto *Crypto, sessionID [16]byte) *Responder {
	return &Responder{tr: tr, crypto: crypto, sessionID: sessionID}
}

// HandleOne receives, verifies, and acks a single control envelope. It
// returns (false, nil) without error when the envelope's MAC was invalid
// and the message was dropped, matching the no-signal drop rule.
func (r *Responder) HandleOne(ctx context.Context, handler Handler) (bool, error) {
	data, err := r.tr.Recv(ctx)
	if err != nil {
		return false, message.New(message.CodeHandshakeTransport, err.Error())
	}
	metrics.SessionMessageSize.WithLabelValues("inbound").Observe(float64(len(data)))

	typ, body, err := message.Unpack(data)
	if err != nil {
		return false, nil
	}
	if typ != message.TypeControl {
		return false, nil
	}

	var env message.Control
	if err := wire.Decode(body, &env); err != nil {
		return false, nil
	}
	if env.SessionID != r.sessionID {
		return false, nil
	}

	if !r.crypto.VerifyPayload(env.Seq, env.SessionID, env.Payload, env.MAC) {
		metrics.MessagesProcessed.WithLabelValues("control", "failure").Inc()
		logger.Warn("control responder dropping envelope with invalid MAC", logger.String("op", string(env.Op)))
		return false, nil
	}

	ok, detail, respPayload := handler(env.Op, env.Payload)

	nonce, err := randomNonce(NonceSize)
	if err != nil {
		return false, err
	}
	mac, err := r.crypto.MACForAck(env.Seq, r.sessionID, ok, detail, respPayload)
	if err != nil {
		return false, message.New(message.CodeControlAuthentication, err.Error())
	}

	ack := message.Acknowledge{
		SessionID: r.sessionID,
		Seq:       env.Seq,
		Nonce:     nonce,
		OK:        ok,
		Detail:    detail,
		Payload:   respPayload,
		MAC:       mac,
	}
	if err := sendEnvelope(ctx, r.tr, ack); err != nil {
		return false, err
	}

	metrics.MessagesProcessed.WithLabelValues("control", "success").Inc()
	return true, nil
}
