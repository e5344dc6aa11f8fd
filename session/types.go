// Package session implements the lifecycle of an ALPINE session: the
// tagged-variant state machine a connection moves through between the
// handshake and a closed channel, the keys derived once per session, and
// the identity/capability records exchanged during session_ack.
package session

import "time"

const GeneralPrefix = "session"

// DeviceIdentity is the immutable tuple a node presents during the
// handshake. It is never recomputed after session_ack.
type DeviceIdentity struct {
	DeviceID     string `json:"deviceId"`
	ManufacturerID string `json:"manufacturerId"`
	ModelID      string `json:"modelId"`
	HardwareRev  string `json:"hardwareRev"`
	FirmwareRev  string `json:"firmwareRev"`
}

// ChannelFormat is the wire representation width of a single DMX-style
// channel value.
type ChannelFormat string

const (
	ChannelFormatU8  ChannelFormat = "u8"
	ChannelFormatU16 ChannelFormat = "u16"
)

// CapabilitySet describes what a node supports. It is fixed for the
// lifetime of a session; a controller requests a subset and the node
// echoes back only what it actually honors.
type CapabilitySet struct {
	ChannelFormats      []ChannelFormat        `json:"channelFormats"`
	MaxChannels         uint32                 `json:"maxChannels"`
	GroupingSupported   bool                   `json:"groupingSupported"`
	StreamingSupported  bool                   `json:"streamingSupported"`
	EncryptionSupported bool                   `json:"encryptionSupported"`
	VendorExtensions    map[string]interface{} `json:"vendorExtensions,omitempty"`
}

// Intersect returns the capability set a node should echo back in
// session_ack: the channel formats and flags it actually supports,
// narrowed to what the controller requested.
func (c CapabilitySet) Intersect(requested CapabilitySet) CapabilitySet {
	out := CapabilitySet{
		MaxChannels:         c.MaxChannels,
		GroupingSupported:   c.GroupingSupported && requested.GroupingSupported,
		StreamingSupported:  c.StreamingSupported && requested.StreamingSupported,
		EncryptionSupported: c.EncryptionSupported && requested.EncryptionSupported,
	}
	if requested.MaxChannels > 0 && requested.MaxChannels < out.MaxChannels {
		out.MaxChannels = requested.MaxChannels
	}
	wanted := make(map[ChannelFormat]bool, len(requested.ChannelFormats))
	for _, f := range requested.ChannelFormats {
		wanted[f] = true
	}
	for _, f := range c.ChannelFormats {
		if wanted[f] {
			out.ChannelFormats = append(out.ChannelFormats, f)
		}
	}
	return out
}

// SessionKeys holds the two keys derived once per session from the ECDH
// shared secret. They must never be reused across roles (control vs.
// stream) or across sessions, and must be zeroed when the session closes.
type SessionKeys struct {
	SharedSecret []byte
	ControlKey   []byte
	StreamKey    []byte
}

// Destroy zeroes all key material in place.
func (k *SessionKeys) Destroy() {
	zero := func(b []byte) {
		for i := range b {
			b[i] = 0
		}
	}
	zero(k.SharedSecret)
	zero(k.ControlKey)
	zero(k.StreamKey)
}

// SessionEstablished is the record produced once a handshake completes
// successfully: the identifiers and material both peers now share.
type SessionEstablished struct {
	SessionID      [16]byte
	ControllerNonce []byte
	DeviceNonce     []byte
	Capabilities    CapabilitySet
	DeviceIdentity  DeviceIdentity
}

// Config defines session policies and limits.
type Config struct {
	MaxAge      time.Duration `json:"maxAge"`
	IdleTimeout time.Duration `json:"idleTimeout"`
	MaxMessages int           `json:"maxMessages"`
}

// Status provides information about session status.
type Status struct {
	TotalSessions   int `json:"totalSessions"`
	ActiveSessions  int `json:"activeSessions"`
	ExpiredSessions int `json:"expiredSessions"`
}
