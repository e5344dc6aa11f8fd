package discovery

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/crypto/keys"
)

func TestBuildAndVerifyReply(t *testing.T) {
	identity, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	clientNonce, err := NewClientNonce()
	require.NoError(t, err)

	reply, err := BuildReply(identity, clientNonce)
	require.NoError(t, err)

	pub := identity.PublicKey().(ed25519.PublicKey)
	require.NoError(t, VerifyReply(reply, clientNonce, pub))
}

func TestVerifyReplyRejectsNonceMismatch(t *testing.T) {
	identity, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	clientNonce, err := NewClientNonce()
	require.NoError(t, err)
	reply, err := BuildReply(identity, clientNonce)
	require.NoError(t, err)

	otherNonce, err := NewClientNonce()
	require.NoError(t, err)

	pub := identity.PublicKey().(ed25519.PublicKey)
	assert.Error(t, VerifyReply(reply, otherNonce, pub))
}

func TestVerifyReplyRejectsWrongKey(t *testing.T) {
	identity, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)
	other, err := keys.GenerateEd25519KeyPair()
	require.NoError(t, err)

	clientNonce, err := NewClientNonce()
	require.NoError(t, err)
	reply, err := BuildReply(identity, clientNonce)
	require.NoError(t, err)

	wrongPub := other.PublicKey().(ed25519.PublicKey)
	assert.Error(t, VerifyReply(reply, clientNonce, wrongPub))
}
