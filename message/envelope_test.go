package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopeTypesAreDistinct(t *testing.T) {
	types := []Type{
		Discover{}.EnvelopeType(),
		DiscoverReply{}.EnvelopeType(),
		SessionInit{}.EnvelopeType(),
		SessionAck{}.EnvelopeType(),
		SessionReady{}.EnvelopeType(),
		SessionComplete{}.EnvelopeType(),
		Control{}.EnvelopeType(),
		Acknowledge{}.EnvelopeType(),
		Frame{}.EnvelopeType(),
		Keepalive{}.EnvelopeType(),
	}
	seen := make(map[Type]bool)
	for _, ty := range types {
		assert.False(t, seen[ty], "duplicate type %s", ty)
		seen[ty] = true
	}
	assert.Len(t, seen, 10)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion(ProtocolVersion))

	err := CheckVersion("0.9")
	assert.Error(t, err)
	var typed *Error
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, CodeDiscoveryUnsupportedVersion, typed.Code)
}
