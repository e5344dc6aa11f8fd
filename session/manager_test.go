package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T) SessionEstablished {
	t.Helper()
	return SessionEstablished{
		SessionID:       NewSessionID(),
		ControllerNonce: randomNonce(t, 32),
		DeviceNonce:     randomNonce(t, 32),
	}
}

func TestManagerRegisterGetRemove(t *testing.T) {
	m := NewManager(time.Minute)
	defer m.Close()

	established := newTestRecord(t)
	keys, err := DeriveSessionKeys(randomNonce(t, 32), established.ControllerNonce, established.DeviceNonce)
	require.NoError(t, err)

	rec, err := m.Register(established, keys, NewFSM())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(established.SessionID)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	m.Remove(established.SessionID)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, StateClosed, rec.FSM.Current().Kind)
}

func TestManagerRegisterRejectsDuplicate(t *testing.T) {
	m := NewManager(time.Minute)
	defer m.Close()

	established := newTestRecord(t)
	keys, err := DeriveSessionKeys(randomNonce(t, 32), established.ControllerNonce, established.DeviceNonce)
	require.NoError(t, err)

	_, err = m.Register(established, keys, NewFSM())
	require.NoError(t, err)

	_, err = m.Register(established, keys, NewFSM())
	assert.Error(t, err)
}

func TestManagerSweepFailsTimedOutSessions(t *testing.T) {
	m := NewManager(time.Millisecond)
	defer m.Close()

	established := newTestRecord(t)
	keys, err := DeriveSessionKeys(randomNonce(t, 32), established.ControllerNonce, established.DeviceNonce)
	require.NoError(t, err)

	fsm := NewFSM()
	_, err = fsm.Transition(StateHandshake, "")
	require.NoError(t, err)
	_, err = fsm.Transition(StateAuthenticated, "")
	require.NoError(t, err)

	rec, err := m.Register(established, keys, fsm)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	m.sweepTimedOut()

	assert.Equal(t, StateFailed, rec.FSM.Current().Kind)
	// Sweep marks Failed but does not evict; eviction is explicit via Remove.
	_, ok := m.Get(established.SessionID)
	assert.True(t, ok)
}
