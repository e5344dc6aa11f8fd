package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	ka := Keepalive{SessionID: [16]byte{1, 2, 3}, TickMS: 5000}

	data, err := Pack(ka)
	require.NoError(t, err)

	typ, body, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, TypeKeepalive, typ)

	var out Keepalive
	require.NoError(t, wire.Decode(body, &out))
	assert.Equal(t, ka, out)
}

func TestUnpackRejectsGarbage(t *testing.T) {
	_, _, err := Unpack([]byte("not cbor"))
	assert.Error(t, err)
}
