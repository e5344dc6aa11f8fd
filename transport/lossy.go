package transport

import (
	"context"
	"math/rand"
	"time"
)

// Lossy wraps a Transport and randomly drops outgoing datagrams and adds
// jitter to delivery, modeling the lossy network conditions scenario 4
// exercises (25% loss, 2ms jitter) against the reliable control channel's
// retransmit logic.
type Lossy struct {
	inner     Transport
	dropRate  float64
	jitter    time.Duration
	rng       *rand.Rand
}

// NewLossy wraps inner, dropping sent datagrams with probability dropRate
// (0..1) and delaying delivered ones by a random duration in [0, jitter].
func NewLossy(inner Transport, dropRate float64, jitter time.Duration, seed int64) *Lossy {
	return &Lossy{
		inner:    inner,
		dropRate: dropRate,
		jitter:   jitter,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Send implements Transport, silently swallowing a fraction of datagrams.
func (l *Lossy) Send(ctx context.Context, data []byte) error {
	if l.rng.Float64() < l.dropRate {
		return nil
	}
	if l.jitter > 0 {
		delay := time.Duration(l.rng.Int63n(int64(l.jitter) + 1))
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return NewError(KindCancelled, ctx.Err().Error())
		}
	}
	return l.inner.Send(ctx, data)
}

// Recv implements Transport by delegating directly; loss/jitter is only
// modeled on the send side of each direction, matching how a real
// network drops a sender's outgoing datagrams.
func (l *Lossy) Recv(ctx context.Context) ([]byte, error) {
	return l.inner.Recv(ctx)
}
