// Package storage provides in-memory identity key storage. The protocol
// does not persist session state across restarts, but long-term identity
// key pairs held by a controller or node process still need a place to
// live for the process lifetime.
package storage

import (
	"sort"
	"sync"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
)

// memoryKeyStorage implements crypto.KeyStorage using an in-memory map.
type memoryKeyStorage struct {
	keys map[string]alpinecrypto.KeyPair
	mu   sync.RWMutex
}

// NewMemoryKeyStorage creates a new in-memory key storage.
func NewMemoryKeyStorage() alpinecrypto.KeyStorage {
	return &memoryKeyStorage{
		keys: make(map[string]alpinecrypto.KeyPair),
	}
}

func (s *memoryKeyStorage) Store(id string, keyPair alpinecrypto.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[id] = keyPair
	return nil
}

func (s *memoryKeyStorage) Load(id string) (alpinecrypto.KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyPair, exists := s.keys[id]
	if !exists {
		return nil, alpinecrypto.ErrKeyNotFound
	}

	return keyPair, nil
}

func (s *memoryKeyStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[id]; !exists {
		return alpinecrypto.ErrKeyNotFound
	}

	delete(s.keys, id)
	return nil
}

func (s *memoryKeyStorage) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *memoryKeyStorage) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.keys[id]
	return exists
}
