// Package control implements the reliable, MAC-authenticated control
// channel (C5/C6) and its keepalive task (C8): a retransmitting,
// replay-protected pipe over an unreliable transport.Transport, carrying
// session-scoped operations once a handshake has established session
// keys.
package control

import (
	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

// Crypto signs and verifies control envelopes using a session's derived
// control key.
type Crypto struct {
	controlKey []byte
}

// NewCrypto builds a Crypto helper bound to one session's control key.
func NewCrypto(controlKey []byte) *Crypto {
	return &Crypto{controlKey: controlKey}
}

// MACForPayload computes the MAC covering a Control envelope's payload,
// keyed by seq with aad = session_id bytes.
func (c *Crypto) MACForPayload(seq uint64, sessionID [16]byte, payload []byte) ([]byte, error) {
	return alpinecrypto.ComputeMAC(c.controlKey, seq, payload, sessionID[:])
}

// VerifyPayload reports whether mac is valid for the given payload.
func (c *Crypto) VerifyPayload(seq uint64, sessionID [16]byte, payload, mac []byte) bool {
	return alpinecrypto.VerifyMAC(c.controlKey, seq, payload, sessionID[:], mac)
}

// ackRecord is the deterministic record an Acknowledge's MAC covers.
type ackRecord struct {
	OK      bool   `cbor:"ok"`
	Detail  string `cbor:"detail"`
	Payload []byte `cbor:"payload,omitempty"`
}

// MACForAck computes the MAC covering an ack's (ok, detail, payload)
// record, keyed by seq with aad = session_id bytes.
func (c *Crypto) MACForAck(seq uint64, sessionID [16]byte, ok bool, detail string, payload []byte) ([]byte, error) {
	bytes, err := wire.Encode(ackRecord{OK: ok, Detail: detail, Payload: payload})
	if err != nil {
		return nil, err
	}
	return alpinecrypto.ComputeMAC(c.controlKey, seq, bytes, sessionID[:])
}

// VerifyAck reports whether mac is valid for the given ack record.
func (c *Crypto) VerifyAck(seq uint64, sessionID [16]byte, ok bool, detail string, payload, mac []byte) bool {
	bytes, err := wire.Encode(ackRecord{OK: ok, Detail: detail, Payload: payload})
	if err != nil {
		return false
	}
	return alpinecrypto.VerifyMAC(c.controlKey, seq, bytes, sessionID[:], mac)
}
