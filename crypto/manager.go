package crypto

import (
	"fmt"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto/keys"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto/storage"
)

// Manager provides centralized generation and storage of identity key
// pairs. Node and controller processes keep one Manager each for their
// long-term Ed25519 identity.
type Manager struct {
	storage KeyStorage
}

// NewManager creates a crypto manager backed by in-memory key storage.
func NewManager() *Manager {
	return &Manager{storage: storage.NewMemoryKeyStorage()}
}

// SetStorage swaps the key storage backend.
func (m *Manager) SetStorage(storage KeyStorage) {
	m.storage = storage
}

// GenerateKeyPair generates a new key pair of the given type.
func (m *Manager) GenerateKeyPair(keyType KeyType) (KeyPair, error) {
	switch keyType {
	case KeyTypeEd25519:
		return keys.GenerateEd25519KeyPair()
	case KeyTypeX25519:
		return keys.GenerateX25519KeyPair()
	default:
		return nil, fmt.Errorf("crypto: unsupported key type: %s", keyType)
	}
}

// StoreKeyPair stores a key pair under its own ID.
func (m *Manager) StoreKeyPair(keyPair KeyPair) error {
	return m.storage.Store(keyPair.ID(), keyPair)
}

// LoadKeyPair loads a key pair by ID.
func (m *Manager) LoadKeyPair(id string) (KeyPair, error) {
	return m.storage.Load(id)
}

// DeleteKeyPair removes a key pair by ID.
func (m *Manager) DeleteKeyPair(id string) error {
	return m.storage.Delete(id)
}

// ListKeyPairs lists all stored key pair IDs.
func (m *Manager) ListKeyPairs() ([]string, error) {
	return m.storage.List()
}
