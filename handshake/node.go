package handshake

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
)

// NodeConfig carries everything a node needs to answer one handshake
// attempt.
type NodeConfig struct {
	KeyExchange  KeyExchange
	Identity     Signer
	DeviceIdentity session.DeviceIdentity
	// Supported is this node's full capability set; the session_ack
	// capabilities sent back are Supported.Intersect(init.Requested).
	Supported session.CapabilitySet
	// AllowedControllers, if non-empty, restricts accepted session_init
	// messages to these controller ids (§4.3 node obligation 1).
	AllowedControllers []string
}

func (c NodeConfig) controllerAllowed(id string) bool {
	if len(c.AllowedControllers) == 0 {
		return true
	}
	for _, allowed := range c.AllowedControllers {
		if allowed == id {
			return true
		}
	}
	return false
}

// RunNode drives the node side of the four-message flow over tr. On
// success it returns the established session record and derived keys.
// On any failure after session_init has been received it sends
// session_complete{ok=false, error=<code>} as a best-effort courtesy to
// the controller before returning the error; a failure to receive
// session_init itself is returned without a reply.
func RunNode(ctx context.Context, tr transport.Transport, cfg NodeConfig) (*Outcome, error) {
	metrics.HandshakesInitiated.WithLabelValues("node").Inc()
	start := time.Now()

	fail := func(errType string, code message.Code, sessionID [16]byte, err error) (*Outcome, error) {
		metrics.HandshakesFailed.WithLabelValues(errType).Inc()
		metrics.HandshakesCompleted.WithLabelValues("failure").Inc()
		logger.Warn("node handshake failed", logger.String("error_type", errType), logger.Error(err))
		_ = sendEnvelope(ctx, tr, message.SessionComplete{SessionID: sessionID, OK: false, Error: code})
		return nil, err
	}

	init, err := recvExpect[message.SessionInit](ctx, tr, message.TypeSessionInit)
	if err != nil {
		return nil, err
	}

	if !cfg.controllerAllowed(init.ControllerID) {
		err := message.New(message.CodeHandshakeAuthentication, "controller not in allowlist")
		return fail("authentication", message.CodeHandshakeAuthentication, init.SessionID, err)
	}

	deviceNonce, err := NewNonce()
	if err != nil {
		return fail("internal", message.CodeHandshakeProtocol, init.SessionID, err)
	}

	signature, err := cfg.Identity.Sign(init.ControllerNonce)
	if err != nil {
		return fail("internal", message.CodeHandshakeProtocol, init.SessionID, err)
	}

	ack := message.SessionAck{
		SessionID:       init.SessionID,
		DeviceNonce:     deviceNonce,
		DevicePublicKey: cfg.KeyExchange.PublicBytesKey(),
		Identity:        cfg.DeviceIdentity,
		Capabilities:    cfg.Supported.Intersect(init.Requested),
		Signature:       signature,
	}
	if err := sendEnvelope(ctx, tr, ack); err != nil {
		return fail("transport", message.CodeHandshakeTransport, init.SessionID, err)
	}

	shared, err := cfg.KeyExchange.DeriveSharedSecret(init.ControllerPublicKey)
	if err != nil {
		return fail("authentication", message.CodeCryptoInvalidPeerKey, init.SessionID, err)
	}
	keys, err := session.DeriveSessionKeys(shared, init.ControllerNonce, deviceNonce)
	if err != nil {
		return fail("internal", message.CodeHandshakeProtocol, init.SessionID, err)
	}

	ready, err := recvExpect[message.SessionReady](ctx, tr, message.TypeSessionReady)
	if err != nil {
		code := message.CodeHandshakeProtocol
		var merr *message.Error
		if errors.As(err, &merr) {
			code = merr.Code
		}
		return fail("protocol", code, init.SessionID, err)
	}
	if ready.SessionID != init.SessionID {
		err := message.New(message.CodeHandshakeProtocol, "session_ready session id mismatch")
		return fail("protocol", message.CodeHandshakeProtocol, init.SessionID, err)
	}

	if !alpinecrypto.VerifyMAC(keys.ControlKey, 0, init.SessionID[:], deviceNonce, ready.MAC) {
		err := message.New(message.CodeHandshakeAuthentication, "session_ready MAC invalid")
		return fail("authentication", message.CodeHandshakeAuthentication, init.SessionID, err)
	}

	if err := sendEnvelope(ctx, tr, message.SessionComplete{SessionID: init.SessionID, OK: true}); err != nil {
		return fail("transport", message.CodeHandshakeTransport, init.SessionID, err)
	}

	established := session.SessionEstablished{
		SessionID:       init.SessionID,
		ControllerNonce: init.ControllerNonce,
		DeviceNonce:     deviceNonce,
		Capabilities:    ack.Capabilities,
		DeviceIdentity:  cfg.DeviceIdentity,
	}

	metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	metrics.HandshakeDuration.WithLabelValues("finalize").Observe(time.Since(start).Seconds())
	logger.Info("node handshake complete", logger.String("session_id", hex.EncodeToString(init.SessionID[:])))

	return &Outcome{Established: established, Keys: keys}, nil
}
