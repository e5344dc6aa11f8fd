package message

import (
	"fmt"
	"time"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

// frame is the outer, self-describing wrapper every ALPINE datagram
// carries: a type discriminator plus the canonically-encoded body for
// that type. Dispatch on Type lets a receiver decode the body into the
// right Go struct without guessing.
type frame struct {
	Type Type   `cbor:"type"`
	Body []byte `cbor:"body"`
}

// Pack encodes env's body and wraps it with its wire type tag, producing
// the single datagram blob a Transport sends.
func Pack(env Envelope) ([]byte, error) {
	start := time.Now()
	body, err := wire.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("message: encode body: %w", err)
	}
	out, err := wire.Encode(frame{Type: env.EnvelopeType(), Body: body})
	if err != nil {
		return nil, err
	}
	metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	metrics.MessageSize.Observe(float64(len(out)))
	return out, nil
}

// Unpack reads a datagram's type tag and leaves the type-specific body
// for the caller to decode with wire.Decode into the matching struct.
func Unpack(data []byte) (Type, []byte, error) {
	start := time.Now()
	var f frame
	if err := wire.Decode(data, &f); err != nil {
		return "", nil, fmt.Errorf("message: decode frame: %w", err)
	}
	metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	metrics.MessageSize.Observe(float64(len(data)))
	return f.Type, f.Body, nil
}
