package keys

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
)

// NewEd25519KeyPair creates a new Ed25519 key pair from an existing private key.
func NewEd25519KeyPair(privateKey ed25519.PrivateKey, id string) (alpinecrypto.KeyPair, error) {
	publicKey := privateKey.Public().(ed25519.PublicKey)

	if id == "" {
		hash := sha256.Sum256(publicKey)
		id = hex.EncodeToString(hash[:8])
	}

	return &ed25519KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         id,
	}, nil
}

// NewX25519KeyPair creates a new X25519 key pair from an existing private key.
func NewX25519KeyPair(privateKey *ecdh.PrivateKey, id string) (alpinecrypto.KeyPair, error) {
	publicKey := privateKey.PublicKey()

	if id == "" {
		pubKeyBytes := publicKey.Bytes()
		hash := sha256.Sum256(pubKeyBytes)
		id = hex.EncodeToString(hash[:8])
	}

	return &X25519KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         id,
	}, nil
}

// NewEd25519Verifier wraps a raw Ed25519 public key for verification
// only, for callers that only know a peer's verifying key (e.g. from
// discovery or static configuration) and never its private key.
func NewEd25519Verifier(publicKey ed25519.PublicKey) alpinecrypto.KeyPair {
	hash := sha256.Sum256(publicKey)
	return &publicKeyOnlyEd25519{
		publicKey: publicKey,
		id:        hex.EncodeToString(hash[:8]),
	}
}

// publicKeyOnlyEd25519 wraps an Ed25519 public key for verification only.
type publicKeyOnlyEd25519 struct {
	publicKey ed25519.PublicKey
	id        string
}

func (pk *publicKeyOnlyEd25519) PublicKey() crypto.PublicKey {
	return pk.publicKey
}

func (pk *publicKeyOnlyEd25519) PrivateKey() crypto.PrivateKey {
	return nil
}

func (pk *publicKeyOnlyEd25519) Type() alpinecrypto.KeyType {
	return alpinecrypto.KeyTypeEd25519
}

func (pk *publicKeyOnlyEd25519) Sign(message []byte) ([]byte, error) {
	return nil, errors.New("cannot sign with public key only")
}

func (pk *publicKeyOnlyEd25519) Verify(message, signature []byte) error {
	metrics.CryptoOperations.WithLabelValues("verify", "ed25519").Inc()
	if !ed25519.Verify(pk.publicKey, message, signature) {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return alpinecrypto.ErrInvalidSignature
	}
	return nil
}

func (pk *publicKeyOnlyEd25519) ID() string {
	return pk.id
}
