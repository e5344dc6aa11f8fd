// Package handshake drives the four-message ALPINE session establishment
// exchange: session_init, session_ack, session_ready, session_complete.
// Both roles share the same abstract transport.Transport and differ only
// in which obligations they carry out (§4.3).
package handshake

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

// NonceSize is the length of the controller and device handshake nonces.
const NonceSize = 32

// KeyExchange is the ephemeral key-agreement role a handshake driver
// needs. crypto/keys.X25519KeyPair already satisfies this structurally.
type KeyExchange interface {
	PublicBytesKey() []byte
	DeriveSharedSecret(peerPublicKey []byte) ([]byte, error)
}

// Signer produces a detached signature over an arbitrary message.
type Signer interface {
	Sign(message []byte) ([]byte, error)
}

// Verifier checks a detached signature. A verify-only Ed25519 key (the
// device's verifying key, known out-of-band) satisfies this.
type Verifier interface {
	Verify(message, signature []byte) error
}

// Outcome is what a completed handshake hands back to its caller.
type Outcome struct {
	Established session.SessionEstablished
	Keys        *session.SessionKeys
}

// NewNonce generates a fresh NonceSize-byte handshake nonce.
func NewNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("handshake: generate nonce: %w", err)
	}
	return n, nil
}

func sendEnvelope(ctx context.Context, tr transport.Transport, env message.Envelope) error {
	data, err := message.Pack(env)
	if err != nil {
		return fmt.Errorf("handshake: encode %s: %w", env.EnvelopeType(), err)
	}
	if err := tr.Send(ctx, data); err != nil {
		return fmt.Errorf("handshake: send %s: %w", env.EnvelopeType(), err)
	}
	return nil
}

// recvExpect receives one datagram and decodes it into a value of type T,
// requiring its wire type to equal want. Any mismatch or transport error
// is a fatal Protocol/Transport error, per the handshake's non-retryable
// failure rule.
func recvExpect[T any](ctx context.Context, tr transport.Transport, want message.Type) (T, error) {
	var out T

	data, err := tr.Recv(ctx)
	if err != nil {
		return out, message.New(message.CodeHandshakeTransport, err.Error())
	}

	typ, body, err := message.Unpack(data)
	if err != nil {
		return out, message.New(message.CodeHandshakeProtocol, "malformed envelope: "+err.Error())
	}
	if typ != want {
		return out, message.New(message.CodeHandshakeProtocol, fmt.Sprintf("expected %s, got %s", want, typ))
	}

	if err := wire.Decode(body, &out); err != nil {
		return out, message.New(message.CodeHandshakeProtocol, "decode "+string(want)+": "+err.Error())
	}
	return out, nil
}
