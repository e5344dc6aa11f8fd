package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonceCacheDetectsReplay(t *testing.T) {
	nc := NewNonceCache(time.Minute)
	defer nc.Close()

	assert.False(t, nc.Seen("sess-1", "1"))
	assert.True(t, nc.Seen("sess-1", "1"))
	assert.False(t, nc.Seen("sess-1", "2"))
}

func TestNonceCacheScopedPerKey(t *testing.T) {
	nc := NewNonceCache(time.Minute)
	defer nc.Close()

	assert.False(t, nc.Seen("sess-1", "1"))
	assert.False(t, nc.Seen("sess-2", "1"))
}

func TestNonceCacheDeleteKeyClearsEntries(t *testing.T) {
	nc := NewNonceCache(time.Minute)
	defer nc.Close()

	assert.False(t, nc.Seen("sess-1", "1"))
	nc.DeleteKey("sess-1")
	assert.False(t, nc.Seen("sess-1", "1"))
}

func TestNonceCacheExpiresEntries(t *testing.T) {
	nc := NewNonceCache(time.Millisecond)
	defer nc.Close()

	assert.False(t, nc.Seen("sess-1", "1"))
	time.Sleep(5 * time.Millisecond)
	assert.False(t, nc.Seen("sess-1", "1"))
}
