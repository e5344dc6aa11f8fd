package message

import (
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
)

// Type is the snake_case wire discriminator every envelope carries.
// This is the closed identifier set named by the protocol. The handshake
// treats any type other than the one it expects at a step as a fatal
// Protocol error; the control channel and responder skip types they do
// not handle.
type Type string

const (
	TypeDiscover      Type = "alpine_discover"
	TypeDiscoverReply Type = "alpine_discover_reply"
	TypeSessionInit     Type = "session_init"
	TypeSessionAck      Type = "session_ack"
	TypeSessionReady    Type = "session_ready"
	TypeSessionComplete Type = "session_complete"
	TypeControl    Type = "alpine_control"
	TypeControlAck Type = "alpine_control_ack"
	TypeFrame    Type = "alpine_frame"
	TypeKeepalive Type = "keepalive"
)

// ProtocolVersion is the version string both sides must agree on during
// discovery.
const ProtocolVersion = "1.0"

// Envelope is implemented by every typed message so a dispatcher can
// switch on its wire type without a separate tag field.
type Envelope interface {
	EnvelopeType() Type
}

// Discover is broadcast by a controller looking for nodes on the local
// network.
type Discover struct {
	Version     string
	ClientNonce []byte
}

func (Discover) EnvelopeType() Type { return TypeDiscover }

// DiscoverReply is a node's signed response to a Discover. Signature
// covers server_nonce‖client_nonce under the node's Ed25519 identity
// key.
type DiscoverReply struct {
	Version     string
	ServerNonce []byte
	ClientNonce []byte
	Signature   []byte
}

func (DiscoverReply) EnvelopeType() Type { return TypeDiscoverReply }

// SessionInit is the first handshake message, sent controller -> node.
type SessionInit struct {
	SessionID           [16]byte
	ControllerID        string
	ControllerNonce     []byte
	ControllerPublicKey []byte
	Requested           session.CapabilitySet
}

func (SessionInit) EnvelopeType() Type { return TypeSessionInit }

// SessionAck is the node's reply, carrying its identity, capabilities,
// and a signature over the controller's nonce proving possession of its
// long-lived identity key.
type SessionAck struct {
	SessionID       [16]byte
	DeviceNonce     []byte
	DevicePublicKey []byte
	Identity        session.DeviceIdentity
	Capabilities    session.CapabilitySet
	Signature       []byte
}

func (SessionAck) EnvelopeType() Type { return TypeSessionAck }

// SessionReady is sent controller -> node once the controller has
// derived keys and computed mac0, the zero-sequence control MAC that
// proves it holds the same control_key.
type SessionReady struct {
	SessionID [16]byte
	MAC       []byte
}

func (SessionReady) EnvelopeType() Type { return TypeSessionReady }

// SessionComplete closes the handshake. Error is only meaningful when
// OK is false.
type SessionComplete struct {
	SessionID [16]byte
	OK        bool
	Error     Code
}

func (SessionComplete) EnvelopeType() Type { return TypeSessionComplete }

// ControlOp names a control-channel operation.
type ControlOp string

// Control is a reliable, MAC-authenticated control-channel message.
type Control struct {
	SessionID   [16]byte
	Seq         uint64
	Nonce       []byte
	TimestampMS uint64
	Op          ControlOp
	Payload     []byte
	MAC         []byte
}

func (Control) EnvelopeType() Type { return TypeControl }

// Acknowledge answers a Control message by the same seq. Nonce is fresh
// per ack and is what the sender records in its replay-seen set.
type Acknowledge struct {
	SessionID [16]byte
	Seq       uint64
	Nonce     []byte
	OK        bool
	Detail    string
	Payload   []byte
	MAC       []byte
}

func (Acknowledge) EnvelopeType() Type { return TypeControlAck }

// Frame is a single fire-and-forget streaming datagram.
type Frame struct {
	SessionID    [16]byte
	TimestampUS  uint64
	Priority     uint8
	ChannelFormat session.ChannelFormat
	Channels     []uint16
	Groups       map[string][]uint16
	Metadata     map[string]interface{}
}

func (Frame) EnvelopeType() Type { return TypeFrame }

// Keepalive is sent periodically to hold the control channel open.
type Keepalive struct {
	SessionID [16]byte
	TickMS    uint64
}

func (Keepalive) EnvelopeType() Type { return TypeKeepalive }

// CheckVersion returns CodeDiscoveryUnsupportedVersion if the peer's
// advertised version does not match ProtocolVersion.
func CheckVersion(peerVersion string) error {
	if peerVersion != ProtocolVersion {
		return New(CodeDiscoveryUnsupportedVersion, "peer version "+peerVersion+" does not match "+ProtocolVersion)
	}
	return nil
}
