package handshake

import (
	"context"
	"encoding/hex"
	"time"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
)

// ControllerConfig carries everything a controller needs to drive one
// handshake attempt.
type ControllerConfig struct {
	// ControllerID optionally identifies this controller to a node that
	// enforces an allowlist (§4.3 node obligation 1). May be empty.
	ControllerID string
	KeyExchange  KeyExchange
	// DeviceVerifier is the device's Ed25519 verifying key, known
	// out-of-band (discovery or static configuration).
	DeviceVerifier Verifier
	Requested      session.CapabilitySet
}

// RunController drives the controller side of the four-message flow over
// tr and returns the established session record and derived keys on
// success. Any failure is non-retryable: the caller must start a fresh
// attempt with a new session id and nonce.
func RunController(ctx context.Context, tr transport.Transport, cfg ControllerConfig) (*Outcome, error) {
	metrics.HandshakesInitiated.WithLabelValues("controller").Inc()
	start := time.Now()

	fail := func(errType string, err error) (*Outcome, error) {
		metrics.HandshakesFailed.WithLabelValues(errType).Inc()
		metrics.HandshakesCompleted.WithLabelValues("failure").Inc()
		logger.Warn("controller handshake failed", logger.String("error_type", errType), logger.Error(err))
		return nil, err
	}

	controllerNonce, err := NewNonce()
	if err != nil {
		return fail("internal", err)
	}
	sessionID := session.NewSessionID()

	init := message.SessionInit{
		SessionID:           sessionID,
		ControllerID:        cfg.ControllerID,
		ControllerNonce:     controllerNonce,
		ControllerPublicKey: cfg.KeyExchange.PublicBytesKey(),
		Requested:           cfg.Requested,
	}
	if err := sendEnvelope(ctx, tr, init); err != nil {
		return fail("transport", err)
	}

	ack, err := recvExpect[message.SessionAck](ctx, tr, message.TypeSessionAck)
	if err != nil {
		return fail("protocol", err)
	}

	if ack.SessionID != sessionID {
		return fail("protocol", message.New(message.CodeHandshakeProtocol, "session_ack session id mismatch"))
	}
	if len(ack.DeviceNonce) != NonceSize {
		return fail("protocol", message.New(message.CodeHandshakeProtocol, "session_ack device nonce has wrong length"))
	}
	if err := cfg.DeviceVerifier.Verify(controllerNonce, ack.Signature); err != nil {
		return fail("authentication", message.New(message.CodeHandshakeAuthentication, "device signature over controller_nonce is invalid"))
	}

	shared, err := cfg.KeyExchange.DeriveSharedSecret(ack.DevicePublicKey)
	if err != nil {
		return fail("authentication", message.New(message.CodeCryptoInvalidPeerKey, err.Error()))
	}
	keys, err := session.DeriveSessionKeys(shared, controllerNonce, ack.DeviceNonce)
	if err != nil {
		return fail("internal", err)
	}

	mac0, err := alpinecrypto.ComputeMAC(keys.ControlKey, 0, sessionID[:], ack.DeviceNonce)
	if err != nil {
		return fail("internal", err)
	}

	ready := message.SessionReady{SessionID: sessionID, MAC: mac0}
	if err := sendEnvelope(ctx, tr, ready); err != nil {
		return fail("transport", err)
	}

	complete, err := recvExpect[message.SessionComplete](ctx, tr, message.TypeSessionComplete)
	if err != nil {
		return fail("protocol", err)
	}
	if !complete.OK {
		return fail("authentication", message.New(complete.Error, "node reported handshake failure"))
	}
	if complete.SessionID != sessionID {
		return fail("protocol", message.New(message.CodeHandshakeProtocol, "session_complete session id mismatch"))
	}

	established := session.SessionEstablished{
		SessionID:       sessionID,
		ControllerNonce: controllerNonce,
		DeviceNonce:     ack.DeviceNonce,
		Capabilities:    ack.Capabilities,
		DeviceIdentity:  ack.Identity,
	}

	metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	metrics.HandshakeDuration.WithLabelValues("finalize").Observe(time.Since(start).Seconds())
	logger.Info("controller handshake complete", logger.String("session_id", hex.EncodeToString(sessionID[:])))

	return &Outcome{Established: established, Keys: keys}, nil
}
