package session

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomNonce(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestDeriveSessionKeysBothSidesAgree(t *testing.T) {
	shared := randomNonce(t, 32)
	cNonce := randomNonce(t, 32)
	dNonce := randomNonce(t, 32)

	controllerSide, err := DeriveSessionKeys(shared, cNonce, dNonce)
	require.NoError(t, err)
	nodeSide, err := DeriveSessionKeys(shared, cNonce, dNonce)
	require.NoError(t, err)

	assert.Equal(t, controllerSide.ControlKey, nodeSide.ControlKey)
	assert.Equal(t, controllerSide.StreamKey, nodeSide.StreamKey)
	assert.Len(t, controllerSide.ControlKey, 32)
	assert.Len(t, controllerSide.StreamKey, 32)
}

func TestDeriveSessionKeysControlAndStreamNeverEqual(t *testing.T) {
	keys, err := DeriveSessionKeys(randomNonce(t, 32), randomNonce(t, 32), randomNonce(t, 32))
	require.NoError(t, err)
	assert.NotEqual(t, keys.ControlKey, keys.StreamKey)
}

func TestDeriveSessionKeysNonceOrderMatters(t *testing.T) {
	shared := randomNonce(t, 32)
	a := randomNonce(t, 32)
	b := randomNonce(t, 32)

	forward, err := DeriveSessionKeys(shared, a, b)
	require.NoError(t, err)
	reversed, err := DeriveSessionKeys(shared, b, a)
	require.NoError(t, err)

	assert.NotEqual(t, forward.ControlKey, reversed.ControlKey)
}

func TestDeriveSessionKeysRejectsEmptyInputs(t *testing.T) {
	_, err := DeriveSessionKeys(nil, randomNonce(t, 32), randomNonce(t, 32))
	assert.Error(t, err)

	_, err = DeriveSessionKeys(randomNonce(t, 32), nil, randomNonce(t, 32))
	assert.Error(t, err)
}

func TestSessionKeysDestroyZeroesMaterial(t *testing.T) {
	keys, err := DeriveSessionKeys(randomNonce(t, 32), randomNonce(t, 32), randomNonce(t, 32))
	require.NoError(t, err)

	keys.Destroy()

	for _, b := range [][]byte{keys.SharedSecret, keys.ControlKey, keys.StreamKey} {
		for _, v := range b {
			assert.Zero(t, v)
		}
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.NotEqual(t, a, b)
}

func TestCapabilitySetIntersect(t *testing.T) {
	node := CapabilitySet{
		ChannelFormats:      []ChannelFormat{ChannelFormatU8, ChannelFormatU16},
		MaxChannels:         512,
		GroupingSupported:   true,
		StreamingSupported:  true,
		EncryptionSupported: false,
	}
	requested := CapabilitySet{
		ChannelFormats: []ChannelFormat{ChannelFormatU16},
		MaxChannels:    128,
	}

	got := node.Intersect(requested)
	assert.Equal(t, []ChannelFormat{ChannelFormatU16}, got.ChannelFormats)
	assert.Equal(t, uint32(128), got.MaxChannels)
	assert.False(t, got.GroupingSupported)
	assert.False(t, got.EncryptionSupported)
}
