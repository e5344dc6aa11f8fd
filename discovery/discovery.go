// Package discovery builds and verifies the signed discovery reply a
// node sends in answer to a controller's broadcast. The actual
// beacon/broadcast mechanics (§1: "Discovery beacon/broadcast
// mechanics") are an external collaborator; this package only covers
// the signature contract named in the data model (§4.1, §4.2).
package discovery

import (
	"crypto/ed25519"
	"crypto/rand"

	alpinecrypto "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
)

// NonceSize is the length of a discovery nonce.
const NonceSize = 32

// NewClientNonce generates a fresh 32-byte nonce for a discovery round.
func NewClientNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// BuildDiscover constructs the controller's broadcast request.
func BuildDiscover(clientNonce []byte) message.Discover {
	return message.Discover{
		Version:     message.ProtocolVersion,
		ClientNonce: clientNonce,
	}
}

// BuildReply signs server_nonce‖client_nonce under the node's Ed25519
// identity key and returns the signed reply, per §4.1/§4.2.
func BuildReply(identity alpinecrypto.KeyPair, clientNonce []byte) (message.DiscoverReply, error) {
	serverNonce, err := NewClientNonce()
	if err != nil {
		return message.DiscoverReply{}, err
	}

	data := make([]byte, 0, len(serverNonce)+len(clientNonce))
	data = append(data, serverNonce...)
	data = append(data, clientNonce...)

	sig, err := identity.Sign(data)
	if err != nil {
		return message.DiscoverReply{}, err
	}

	return message.DiscoverReply{
		Version:     message.ProtocolVersion,
		ServerNonce: serverNonce,
		ClientNonce: clientNonce,
		Signature:   sig,
	}, nil
}

// VerifyReply checks version, client-nonce echo, and the Ed25519
// signature over server_nonce‖client_nonce against the node's known
// verifying key.
func VerifyReply(reply message.DiscoverReply, expectedClientNonce []byte, verifyingKey ed25519.PublicKey) error {
	if err := message.CheckVersion(reply.Version); err != nil {
		return err
	}
	if !bytesEqual(reply.ClientNonce, expectedClientNonce) {
		return message.New(message.CodeDiscoveryMalformed, "client nonce does not match request")
	}

	data := make([]byte, 0, len(reply.ServerNonce)+len(reply.ClientNonce))
	data = append(data, reply.ServerNonce...)
	data = append(data, reply.ClientNonce...)

	if !ed25519.Verify(verifyingKey, data, reply.Signature) {
		return message.New(message.CodeDiscoveryMalformed, "signature verification failed")
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
