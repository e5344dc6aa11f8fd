package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	controlKeyInfo = "alpine-control"
	streamKeyInfo  = "alpine-stream"
	derivedKeySize = 32
)

// NewSessionID generates a fresh 128-bit session identifier, as a
// controller does once per handshake attempt.
func NewSessionID() [16]byte {
	return [16]byte(uuid.New())
}

// DeriveSessionKeys runs HKDF-SHA256 once over the raw ECDH shared
// secret, salted with controllerNonce||deviceNonce, expanding to two
// 32-byte keys under distinct info strings so the control and stream
// roles never share key material.
func DeriveSessionKeys(sharedSecret, controllerNonce, deviceNonce []byte) (*SessionKeys, error) {
	if len(sharedSecret) == 0 {
		return nil, fmt.Errorf("session: empty shared secret")
	}
	if len(controllerNonce) == 0 || len(deviceNonce) == 0 {
		return nil, fmt.Errorf("session: empty nonce")
	}

	salt := make([]byte, 0, len(controllerNonce)+len(deviceNonce))
	salt = append(salt, controllerNonce...)
	salt = append(salt, deviceNonce...)

	controlKey, err := hkdfExpand(sharedSecret, salt, controlKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("session: derive control key: %w", err)
	}
	streamKey, err := hkdfExpand(sharedSecret, salt, streamKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("session: derive stream key: %w", err)
	}

	secretCopy := make([]byte, len(sharedSecret))
	copy(secretCopy, sharedSecret)

	return &SessionKeys{
		SharedSecret: secretCopy,
		ControlKey:   controlKey,
		StreamKey:    streamKey,
	}, nil
}

func hkdfExpand(ikm, salt []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, ikm, salt, []byte(info))
	out := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
