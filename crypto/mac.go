package crypto

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
)

const macAlgorithm = "chacha20poly1305"

// MACSize is the length of a computed MAC tag.
const MACSize = 16

// nonceFromSeq builds the 12-byte ChaCha20-Poly1305 nonce used by the
// handshake's mac0 and the control layer: the sequence number big-endian in the
// first 8 bytes, zero-padded to the cipher's nonce size.
func nonceFromSeq(seq uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[:8], seq)
	return nonce
}

// ComputeMAC produces a 16-byte detached authentication tag over payload
// under key, keyed by seq and additional authenticated data. It calls
// the AEAD with an empty plaintext and AAD = aad‖payload, then returns
// only the resulting tag — no ciphertext is ever produced because there
// is nothing to encrypt.
func ComputeMAC(key []byte, seq uint64, payload, aad []byte) ([]byte, error) {
	start := time.Now()
	metrics.CryptoOperations.WithLabelValues("mac", macAlgorithm).Inc()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("mac", macAlgorithm).Observe(time.Since(start).Seconds())
	}()

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("mac").Inc()
		return nil, fmt.Errorf("crypto: invalid MAC key: %w", err)
	}

	combinedAAD := make([]byte, 0, len(aad)+len(payload))
	combinedAAD = append(combinedAAD, aad...)
	combinedAAD = append(combinedAAD, payload...)

	sealed := aead.Seal(nil, nonceFromSeq(seq), nil, combinedAAD)
	if len(sealed) != MACSize {
		metrics.CryptoErrors.WithLabelValues("mac").Inc()
		return nil, fmt.Errorf("crypto: unexpected MAC length %d", len(sealed))
	}
	return sealed, nil
}

// VerifyMAC recomputes the MAC for the given inputs and compares it to
// mac in constant time. Any length mismatch or computation failure is
// treated as a verification failure rather than an error, per the
// boundary behavior that a MAC of the wrong length simply fails to
// verify.
func VerifyMAC(key []byte, seq uint64, payload, aad, mac []byte) bool {
	metrics.CryptoOperations.WithLabelValues("verify", macAlgorithm).Inc()
	if len(mac) != MACSize {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return false
	}
	expected, err := ComputeMAC(key, seq, payload, aad)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return false
	}
	if subtle.ConstantTimeCompare(expected, mac) != 1 {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return false
	}
	return true
}
