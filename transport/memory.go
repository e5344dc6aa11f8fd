package transport

import (
	"context"
	"sync"
)

// MemoryTransport is an in-process, channel-backed Transport. It is the
// loopback collaborator used by tests and by the handshake/control
// scenarios described in spec §8 ("two in-memory transports").
type MemoryTransport struct {
	out    chan []byte
	in     chan []byte
	mu     sync.Mutex
	closed bool
}

// NewMemoryPipe creates two MemoryTransports wired to each other: data
// sent on one arrives on the other's Recv.
func NewMemoryPipe(bufSize int) (a, b *MemoryTransport) {
	c1 := make(chan []byte, bufSize)
	c2 := make(chan []byte, bufSize)
	a = &MemoryTransport{out: c1, in: c2}
	b = &MemoryTransport{out: c2, in: c1}
	return a, b
}

// Send implements Transport.
func (t *MemoryTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	select {
	case t.out <- buf:
		return nil
	case <-ctx.Done():
		return NewError(KindCancelled, ctx.Err().Error())
	}
}

// Recv implements Transport.
func (t *MemoryTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-t.in:
		if !ok {
			return nil, ErrClosed
		}
		return data, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewError(KindTimeout, "recv deadline exceeded")
		}
		return nil, NewError(KindCancelled, ctx.Err().Error())
	}
}

// Close marks the transport closed; further Sends fail and pending Recvs
// observe the channel closing once both ends are done writing.
func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.out)
	return nil
}
