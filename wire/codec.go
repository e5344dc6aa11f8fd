// Package wire provides the canonical self-describing binary encoding
// every ALPINE message is carried in on the datagram transport: a single
// map/array/integer/byte-string blob per message, with deterministic
// output so two encodings of the same logical value always produce the
// same bytes (required for MAC computation, which signs the encoded
// payload).
//
// The production wire codec is an external collaborator (see spec §1);
// this package is the concrete stand-in the rest of the module builds
// and tests against.
package wire

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeUnix
	m, err := opts.EncMode()
	if err != nil {
		panic("wire: invalid canonical encoding options: " + err.Error())
	}
	encMode = m

	dopts := cbor.DecOptions{}
	dm, err := dopts.DecMode()
	if err != nil {
		panic("wire: invalid decoding options: " + err.Error())
	}
	decMode = dm
}

// Encode produces the canonical byte-string encoding of v. Map keys are
// sorted, integers use the shortest representation, and the same
// logical value always yields the same bytes — the property the MAC
// layer depends on.
func Encode(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Decode parses data produced by Encode into v.
func Decode(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}
