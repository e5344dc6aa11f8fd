// Package crypto defines the cryptographic primitive contracts used across
// the protocol: key pair types, the identity key store, and the shared error
// values returned by signature and key-exchange failures.
package crypto

import (
	"crypto"
	"errors"
)

// KeyType identifies the algorithm family a KeyPair was generated for.
type KeyType string

const (
	// KeyTypeEd25519 identifies long-term identity keys used for signing.
	KeyTypeEd25519 KeyType = "Ed25519"
	// KeyTypeX25519 identifies ephemeral key-exchange keys used during the
	// handshake to derive a shared secret.
	KeyTypeX25519 KeyType = "X25519"
)

// KeyPair represents a cryptographic key pair. X25519 pairs implement this
// interface but return an error from Sign and Verify, since X25519 keys
// are exchange-only.
type KeyPair interface {
	PublicKey() crypto.PublicKey
	PrivateKey() crypto.PrivateKey
	Type() KeyType
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) error
	ID() string
}

// KeyStorage provides storage for long-term identity key pairs.
type KeyStorage interface {
	Store(id string, keyPair KeyPair) error
	Load(id string) (KeyPair, error)
	Delete(id string) error
	List() ([]string, error)
	Exists(id string) bool
}

// Common errors returned by crypto and handshake packages.
var (
	ErrKeyNotFound      = errors.New("crypto: key not found")
	ErrInvalidKeyType   = errors.New("crypto: invalid key type")
	ErrKeyExists        = errors.New("crypto: key already exists")
	ErrInvalidSignature = errors.New("crypto: invalid signature")
)
