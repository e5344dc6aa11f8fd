package keys

import (
	"crypto"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidPeerKey is returned when a peer public key is not exactly 32
// bytes.
var ErrInvalidPeerKey = errors.New("crypto: peer public key must be exactly 32 bytes")

// ErrHkdfFailure is returned when HKDF expansion cannot produce the
// requested output (practically unreachable for SHA-256 at 32 bytes, but
// part of the closed contract).
var ErrHkdfFailure = errors.New("crypto: hkdf expansion failed")

const (
	controlKeyInfo = "alpine-control"
	streamKeyInfo  = "alpine-stream"
	derivedKeySize = 32
)

// X25519KeyPair holds an ephemeral X25519 private key and its public key.
// These key pairs are generated fresh for every handshake attempt and are
// never persisted.
type X25519KeyPair struct {
	privateKey *ecdh.PrivateKey
	publicKey  *ecdh.PublicKey
	id         string
}

// GenerateX25519KeyPair generates a new ephemeral X25519 key pair.
func GenerateX25519KeyPair() (alpinecrypto.KeyPair, error) {
	privateKey, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral ECDH key: %w", err)
	}
	publicKey := privateKey.PublicKey()

	pubKeyBytes := publicKey.Bytes()
	hash := sha256.Sum256(pubKeyBytes)
	id := hex.EncodeToString(hash[:8])

	return &X25519KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         id,
	}, nil
}

func (kp *X25519KeyPair) PublicKey() crypto.PublicKey {
	return kp.publicKey
}

// PublicBytesKey returns the raw 32-byte Montgomery-form public key.
func (kp *X25519KeyPair) PublicBytesKey() []byte {
	return kp.publicKey.Bytes()
}

func (kp *X25519KeyPair) PrivateKey() crypto.PrivateKey {
	return kp.privateKey
}

func (kp *X25519KeyPair) Type() alpinecrypto.KeyType {
	return alpinecrypto.KeyTypeX25519
}

func (kp *X25519KeyPair) ID() string {
	return kp.id
}

// Sign returns an error: X25519 keys are exchange-only.
func (kp *X25519KeyPair) Sign(message []byte) ([]byte, error) {
	return nil, fmt.Errorf("crypto: X25519 key pairs do not support signing")
}

// Verify returns an error: X25519 keys are exchange-only.
func (kp *X25519KeyPair) Verify(message, signature []byte) error {
	return fmt.Errorf("crypto: X25519 key pairs do not support verification")
}

// DeriveSharedSecret computes the raw 32-byte X25519 ECDH output against the
// given peer public key bytes. The result is fed directly into HKDF by the
// session layer; it is never used as a key on its own.
func (kp *X25519KeyPair) DeriveSharedSecret(peerPubBytes []byte) ([]byte, error) {
	start := time.Now()
	metrics.CryptoOperations.WithLabelValues("ecdh", "x25519").Inc()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("ecdh", "x25519").Observe(time.Since(start).Seconds())
	}()

	if len(peerPubBytes) != 32 {
		metrics.CryptoErrors.WithLabelValues("ecdh").Inc()
		return nil, ErrInvalidPeerKey
	}

	curve := ecdh.X25519()
	peerPub, err := curve.NewPublicKey(peerPubBytes)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("ecdh").Inc()
		return nil, ErrInvalidPeerKey
	}

	shared, err := kp.privateKey.ECDH(peerPub)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("ecdh").Inc()
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}

	var zero [32]byte
	if subtle.ConstantTimeCompare(shared, zero[:]) == 1 {
		metrics.CryptoErrors.WithLabelValues("ecdh").Inc()
		return nil, fmt.Errorf("crypto: X25519 shared secret is a low-order point")
	}

	return shared, nil
}

// DeriveKeys implements the key-exchange contract: given a 32-byte peer
// public key and a salt, it computes the ECDH shared secret and expands
// it via HKDF-SHA256 into a 32-byte control key and a 32-byte stream
// key, each under a distinct info string so the two roles never share
// key material. Returns ErrInvalidPeerKey if peerPubBytes is not exactly
// 32 bytes, or ErrHkdfFailure if expansion cannot fill the output.
func (kp *X25519KeyPair) DeriveKeys(peerPubBytes, salt []byte) (controlKey, streamKey []byte, err error) {
	shared, err := kp.DeriveSharedSecret(peerPubBytes)
	if err != nil {
		return nil, nil, err
	}

	controlKey, err = hkdfExpand(shared, salt, controlKeyInfo)
	if err != nil {
		return nil, nil, ErrHkdfFailure
	}
	streamKey, err = hkdfExpand(shared, salt, streamKeyInfo)
	if err != nil {
		return nil, nil, ErrHkdfFailure
	}
	return controlKey, streamKey, nil
}

func hkdfExpand(ikm, salt []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, ikm, salt, []byte(info))
	out := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
