package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestX25519KeyPair(t *testing.T) {
	t.Run("GenerateKeyPair", func(t *testing.T) {
		keyPair, err := GenerateX25519KeyPair()
		require.NoError(t, err)
		assert.NotNil(t, keyPair)
		assert.NotNil(t, keyPair.PublicKey())
		assert.NotNil(t, keyPair.PrivateKey())
	})

	t.Run("DeriveSharedSecretIsSymmetric", func(t *testing.T) {
		a, err := GenerateX25519KeyPair()
		require.NoError(t, err)
		b, err := GenerateX25519KeyPair()
		require.NoError(t, err)

		aKey, ok := a.(*X25519KeyPair)
		require.True(t, ok)
		bKey, ok := b.(*X25519KeyPair)
		require.True(t, ok)

		s1, err := aKey.DeriveSharedSecret(bKey.PublicBytesKey())
		require.NoError(t, err)
		s2, err := bKey.DeriveSharedSecret(aKey.PublicBytesKey())
		require.NoError(t, err)

		assert.Equal(t, s1, s2)
		assert.Len(t, s1, 32)
	})

	t.Run("SignAndVerifyUnsupported", func(t *testing.T) {
		keyPair, err := GenerateX25519KeyPair()
		require.NoError(t, err)

		_, err = keyPair.Sign([]byte("msg"))
		assert.Error(t, err)

		err = keyPair.Verify([]byte("msg"), []byte("sig"))
		assert.Error(t, err)
	})

	t.Run("DeriveSharedSecretRejectsGarbage", func(t *testing.T) {
		a, err := GenerateX25519KeyPair()
		require.NoError(t, err)
		aKey := a.(*X25519KeyPair)

		_, err = aKey.DeriveSharedSecret([]byte("too-short"))
		assert.ErrorIs(t, err, ErrInvalidPeerKey)
	})

	t.Run("DeriveKeysBothSidesAgree", func(t *testing.T) {
		a, err := GenerateX25519KeyPair()
		require.NoError(t, err)
		b, err := GenerateX25519KeyPair()
		require.NoError(t, err)

		aKey := a.(*X25519KeyPair)
		bKey := b.(*X25519KeyPair)
		salt := []byte("controller-nonce||device-nonce")

		aControl, aStream, err := aKey.DeriveKeys(bKey.PublicBytesKey(), salt)
		require.NoError(t, err)
		bControl, bStream, err := bKey.DeriveKeys(aKey.PublicBytesKey(), salt)
		require.NoError(t, err)

		assert.Equal(t, aControl, bControl)
		assert.Equal(t, aStream, bStream)
		assert.NotEqual(t, aControl, aStream)
		assert.Len(t, aControl, 32)
		assert.Len(t, aStream, 32)
	})

	t.Run("DeriveKeysRejectsInvalidPeerKey", func(t *testing.T) {
		a, err := GenerateX25519KeyPair()
		require.NoError(t, err)
		aKey := a.(*X25519KeyPair)

		_, _, err = aKey.DeriveKeys([]byte("not-32-bytes"), []byte("salt"))
		assert.ErrorIs(t, err, ErrInvalidPeerKey)
	})
}
