// Package message defines the typed envelopes exchanged between an
// ALPINE controller and node, and the closed error-code taxonomy raised
// while building, validating, or dispatching them. Pack and Unpack wrap
// each envelope in a type-tagged frame encoded with the wire package's
// canonical codec.
package message

import "fmt"

// Code is one value from the closed, phase-grouped error taxonomy.
type Code string

const (
	// Discovery phase.
	CodeDiscoveryUnsupportedVersion Code = "discovery.unsupported_version"
	CodeDiscoveryMalformed          Code = "discovery.malformed"

	// Handshake phase.
	CodeHandshakeAuthentication Code = "handshake.authentication"
	CodeHandshakeProtocol       Code = "handshake.protocol"
	CodeHandshakeTransport      Code = "handshake.transport"

	// Session phase.
	CodeSessionInvalidTransition Code = "session.invalid_transition"
	CodeSessionTimeout           Code = "session.timeout"

	// Control phase.
	CodeControlReplay             Code = "control.replay"
	CodeControlRetransmitExceeded Code = "control.retransmit_exceeded"
	CodeControlAuthentication     Code = "control.authentication"
	CodeControlCancelled          Code = "control.cancelled"

	// Stream phase.
	CodeStreamNotAuthenticated  Code = "stream.not_authenticated"
	CodeStreamStreamingDisabled Code = "stream.streaming_disabled"
	CodeStreamTransport         Code = "stream.transport"

	// Crypto primitives, surfaced through whichever phase invoked them.
	CodeCryptoInvalidPeerKey Code = "crypto.invalid_peer_key"
	CodeCryptoHkdfFailure    Code = "crypto.hkdf_failure"
)

// Error is a single-line, taxonomy-tagged error with an
// operator-readable detail and never an internal invariant exposed.
type Error struct {
	Code   Code
	Detail string
}

// New creates a taxonomy error.
func New(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}
