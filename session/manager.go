package session

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
)

// Record is one live session: its established identifiers/capabilities,
// its derived keys, and its state machine. All mutable pieces are
// guarded independently, per the concurrency model (no single lock is
// held across an I/O call).
type Record struct {
	Established SessionEstablished
	Keys        *SessionKeys
	FSM         *FSM
	createdAt   time.Time
}

// IDString returns the lowercase hex form of the session ID, used as the
// Manager's map key and for log correlation.
func (r *Record) IDString() string {
	return hex.EncodeToString(r.Established.SessionID[:])
}

// Manager tracks every live session for a local controller or node
// process. The timeout sweep marks idle sessions Failed but keeps them;
// sessions are evicted only by Remove or Close.
type Manager struct {
	mu            sync.RWMutex
	sessions      map[string]*Record
	idleBudget    time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// NewManager creates a session manager with the given idle budget
// (passed to FSM.CheckTimeout on every sweep).
func NewManager(idleBudget time.Duration) *Manager {
	if idleBudget <= 0 {
		idleBudget = 5 * time.Minute
	}
	m := &Manager{
		sessions:    make(map[string]*Record),
		idleBudget:  idleBudget,
		stopCleanup: make(chan struct{}),
	}
	m.cleanupTicker = time.NewTicker(30 * time.Second)
	go m.runCleanup()
	return m
}

// Register adds a newly-established session to the manager.
func (m *Manager) Register(established SessionEstablished, keys *SessionKeys, fsm *FSM) (*Record, error) {
	rec := &Record{Established: established, Keys: keys, FSM: fsm, createdAt: time.Now()}
	id := rec.IDString()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		metrics.SessionsCreated.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("session: %s already registered", id)
	}
	m.sessions[id] = rec
	metrics.SessionsCreated.WithLabelValues("success").Inc()
	metrics.SessionsActive.Inc()
	return rec, nil
}

// Get retrieves a session record by its 16-byte ID.
func (m *Manager) Get(sessionID [16]byte) (*Record, bool) {
	id := hex.EncodeToString(sessionID[:])
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	return rec, ok
}

// Remove closes and evicts a session, destroying its key material.
func (m *Manager) Remove(sessionID [16]byte) {
	id := hex.EncodeToString(sessionID[:])

	m.mu.Lock()
	rec, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		rec.FSM.Transition(StateClosed, "")
		if rec.Keys != nil {
			rec.Keys.Destroy()
		}
		metrics.SessionsClosed.Inc()
		metrics.SessionsActive.Dec()
		metrics.SessionDuration.WithLabelValues("lifetime").Observe(time.Since(rec.createdAt).Seconds())
	}
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops background cleanup and destroys every tracked session's
// key material.
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.cleanupTicker.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.sessions {
		rec.FSM.Transition(StateClosed, "")
		if rec.Keys != nil {
			rec.Keys.Destroy()
		}
		metrics.SessionsClosed.Inc()
		metrics.SessionsActive.Dec()
		metrics.SessionDuration.WithLabelValues("lifetime").Observe(time.Since(rec.createdAt).Seconds())
	}
	m.sessions = make(map[string]*Record)
	return nil
}

func (m *Manager) runCleanup() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.sweepTimedOut()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) sweepTimedOut() {
	now := time.Now()

	m.mu.RLock()
	recs := make([]*Record, 0, len(m.sessions))
	for _, rec := range m.sessions {
		recs = append(recs, rec)
	}
	m.mu.RUnlock()

	for _, rec := range recs {
		if rec.FSM.CheckTimeout(m.idleBudget, now) {
			if rec.Keys != nil {
				rec.Keys.Destroy()
			}
			metrics.SessionsExpired.Inc()
			metrics.SessionsActive.Dec()
			metrics.SessionDuration.WithLabelValues("lifetime").Observe(now.Sub(rec.createdAt).Seconds())
		}
	}
}
