package keys

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
)

// ed25519KeyPair implements the KeyPair interface for Ed25519 identity keys.
type ed25519KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	id         string
}

// GenerateEd25519KeyPair generates a new Ed25519 key pair.
func GenerateEd25519KeyPair() (alpinecrypto.KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(publicKey)
	id := hex.EncodeToString(hash[:8])

	return &ed25519KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         id,
	}, nil
}

func (kp *ed25519KeyPair) PublicKey() crypto.PublicKey {
	return kp.publicKey
}

func (kp *ed25519KeyPair) PrivateKey() crypto.PrivateKey {
	return kp.privateKey
}

func (kp *ed25519KeyPair) Type() alpinecrypto.KeyType {
	return alpinecrypto.KeyTypeEd25519
}

func (kp *ed25519KeyPair) Sign(message []byte) ([]byte, error) {
	start := time.Now()
	metrics.CryptoOperations.WithLabelValues("sign", "ed25519").Inc()
	signature := ed25519.Sign(kp.privateKey, message)
	metrics.CryptoOperationDuration.WithLabelValues("sign", "ed25519").Observe(time.Since(start).Seconds())
	return signature, nil
}

func (kp *ed25519KeyPair) Verify(message, signature []byte) error {
	start := time.Now()
	metrics.CryptoOperations.WithLabelValues("verify", "ed25519").Inc()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("verify", "ed25519").Observe(time.Since(start).Seconds())
	}()
	if !ed25519.Verify(kp.publicKey, message, signature) {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return alpinecrypto.ErrInvalidSignature
	}
	return nil
}

func (kp *ed25519KeyPair) ID() string {
	return kp.id
}
