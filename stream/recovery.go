package stream

import "time"

// NetworkConditions is one sampled observation of the path a stream
// runs over.
type NetworkConditions struct {
	LossRatio      float64       // 0..1
	Jitter         time.Duration
	RTT            time.Duration
	ThroughputHz   float64 // frames/sec actually delivered
	ObservedAt     time.Time
}

// Recovery condition thresholds. Crossing any one of them trips
// RecoveryStarted; clearing all four for clearStreak consecutive
// observations trips RecoveryComplete.
const (
	lossThreshold       = 0.05
	jitterThreshold     = 30 * time.Millisecond
	rttThreshold        = 150 * time.Millisecond
	throughputThreshold = 1000.0
	clearStreak         = 3
)

// RecoveryEvent names a transition the monitor fires.
type RecoveryEvent string

const (
	RecoveryStarted  RecoveryEvent = "recovery_started"
	RecoveryComplete RecoveryEvent = "recovery_complete"
)

// RecoveryReason records which threshold(s) pushed the monitor into
// recovery, for logging and metadata annotation.
type RecoveryReason struct {
	HighLoss       bool
	HighJitter     bool
	HighRTT        bool
	LowThroughput  bool
}

func (r RecoveryReason) any() bool {
	return r.HighLoss || r.HighJitter || r.HighRTT || r.LowThroughput
}

func classify(c NetworkConditions) RecoveryReason {
	return RecoveryReason{
		HighLoss:      c.LossRatio > lossThreshold,
		HighJitter:    c.Jitter > jitterThreshold,
		HighRTT:       c.RTT > rttThreshold,
		LowThroughput: c.ThroughputHz > 0 && c.ThroughputHz < throughputThreshold,
	}
}

// RecoveryMonitor turns a sequence of NetworkConditions samples into
// RecoveryStarted/RecoveryComplete edge events, debouncing recovery exit
// so a single clean sample right after a bad one doesn't flap the
// adaptation state back to baseline.
type RecoveryMonitor struct {
	active      bool
	reason      RecoveryReason
	clearCount  int
}

// NewRecoveryMonitor returns a monitor starting in the non-degraded
// state.
func NewRecoveryMonitor() *RecoveryMonitor {
	return &RecoveryMonitor{}
}

// Active reports whether the monitor currently considers the path
// degraded.
func (m *RecoveryMonitor) Active() bool { return m.active }

// Reason returns the most recently observed set of tripped thresholds.
func (m *RecoveryMonitor) Reason() RecoveryReason { return m.reason }

// Feed records one observation and returns the event fired by this
// observation, or "" if nothing changed.
func (m *RecoveryMonitor) Feed(c NetworkConditions) RecoveryEvent {
	reason := classify(c)

	if reason.any() {
		m.clearCount = 0
		m.reason = reason
		if !m.active {
			m.active = true
			return RecoveryStarted
		}
		return ""
	}

	if !m.active {
		return ""
	}

	m.clearCount++
	if m.clearCount >= clearStreak {
		m.active = false
		m.clearCount = 0
		m.reason = RecoveryReason{}
		return RecoveryComplete
	}
	return ""
}
