package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/wire"
)

func testSessionID() [16]byte {
	return [16]byte{0xaa, 0xbb, 0xcc, 0xdd}
}

func TestControlRoundTrip(t *testing.T) {
	sideA, sideB := transport.NewMemoryPipe(8)
	key := make([]byte, 32)
	sessionID := testSessionID()

	channel := NewReliableChannel(sideA, NewCrypto(key), sessionID, DefaultChannelConfig())
	responder := NewResponder(sideB, NewCrypto(key), sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	handler := func(op message.ControlOp, payload []byte) (bool, string, []byte) {
		assert.Equal(t, message.ControlOp("identify"), op)
		return true, "ok", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := responder.HandleOne(ctx, handler)
		assert.NoError(t, err)
	}()

	payload, err := wire.Encode(map[string]string{"action": "lock"})
	require.NoError(t, err)

	ack, err := channel.SendReliable(ctx, message.ControlOp("identify"), payload)
	require.NoError(t, err)
	wg.Wait()

	assert.True(t, ack.OK)
	assert.Equal(t, "ok", ack.Detail)
}

func TestControlRetransmitUnderLoss(t *testing.T) {
	sideA, sideB := transport.NewMemoryPipe(16)
	lossyA := transport.NewLossy(sideA, 0.25, 2*time.Millisecond, 7)
	key := make([]byte, 32)
	sessionID := testSessionID()

	cfg := ChannelConfig{MaxAttempts: 8, BaseTimeout: 10 * time.Millisecond, DropThreshold: 8}
	channel := NewReliableChannel(lossyA, NewCrypto(key), sessionID, cfg)
	responder := NewResponder(sideB, NewCrypto(key), sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	handler := func(op message.ControlOp, payload []byte) (bool, string, []byte) {
		return true, "ok", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if _, err := responder.HandleOne(ctx, handler); err != nil {
				return
			}
		}
	}()

	ack, err := channel.SendReliable(ctx, message.ControlOp("identify"), []byte("payload"))
	require.NoError(t, err)
	assert.True(t, ack.OK)

	cancel()
	<-done
}

// fakeServerTransport lets a test script exactly what the "server" sends
// back, to force the replay-detection path deterministically.
type fakeServerTransport struct {
	mu      sync.Mutex
	inbound chan []byte
	replies [][]byte
	sent    [][]byte
}

func newFakeServerTransport(replies [][]byte) *fakeServerTransport {
	return &fakeServerTransport{inbound: make(chan []byte, len(replies)), replies: replies}
}

func (f *fakeServerTransport) Send(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	if len(f.replies) > 0 {
		reply := f.replies[0]
		f.replies = f.replies[1:]
		f.inbound <- reply
	}
	return nil
}

func (f *fakeServerTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data := <-f.inbound:
		return data, nil
	case <-ctx.Done():
		return nil, transport.NewError(transport.KindTimeout, "no reply queued")
	}
}

func TestControlReplayDetected(t *testing.T) {
	key := make([]byte, 32)
	sessionID := testSessionID()
	crypto := NewCrypto(key)

	// First ack: seq=1, ok=true, nonce=[1,2,3]. Second ack (in
	// response to the seq=2 send): same nonce but seq=1 again, which is
	// exactly the "server sends the same ack twice" scenario.
	ackFor := func(seq uint64) []byte {
		mac, err := crypto.MACForAck(seq, sessionID, true, "ok", nil)
		require.NoError(t, err)
		data, err := message.Pack(message.Acknowledge{
			SessionID: sessionID,
			Seq:       seq,
			Nonce:     []byte{1, 2, 3},
			OK:        true,
			Detail:    "ok",
			MAC:       mac,
		})
		require.NoError(t, err)
		return data
	}

	fake := newFakeServerTransport([][]byte{ackFor(1), ackFor(1)})
	channel := NewReliableChannel(fake, crypto, sessionID, DefaultChannelConfig())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// First send: seq becomes 1, matches the queued ack's seq, succeeds
	// and records nonce [1,2,3] as seen.
	ack, err := channel.SendReliable(ctx, message.ControlOp("identify"), []byte("a"))
	require.NoError(t, err)
	assert.True(t, ack.OK)

	// Second send: seq becomes 2, but the queued reply still carries
	// seq=1 with the already-seen nonce -> replay detected.
	_, err = channel.SendReliable(ctx, message.ControlOp("identify"), []byte("b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(message.CodeControlReplay))
}

func TestControlDropsInvalidMAC(t *testing.T) {
	sideA, sideB := transport.NewMemoryPipe(4)
	sessionID := testSessionID()
	goodKey := make([]byte, 32)
	badKey := make([]byte, 32)
	badKey[0] = 1

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	mac, err := NewCrypto(badKey).MACForPayload(1, sessionID, []byte("x"))
	require.NoError(t, err)
	forged := message.Control{SessionID: sessionID, Seq: 1, Nonce: []byte("0123456789012345"), Op: "identify", Payload: []byte("x"), MAC: mac}
	require.NoError(t, sendEnvelope(ctx, sideA, forged))

	responder := NewResponder(sideB, NewCrypto(goodKey), sessionID)
	handled, err := responder.HandleOne(ctx, func(message.ControlOp, []byte) (bool, string, []byte) {
		t.Fatal("handler should not run for an invalid MAC")
		return false, "", nil
	})
	require.NoError(t, err)
	assert.False(t, handled)
}
