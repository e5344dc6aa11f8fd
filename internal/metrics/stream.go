package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesSent tracks frames handed to the transport, by jitter
	// strategy and whether the frame carried a forced keyframe.
	FramesSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "frames_sent_total",
			Help:      "Total number of stream frames transmitted",
		},
		[]string{"jitter_strategy", "keyframe"},
	)

	// FramesRejected tracks Send calls that never reached the
	// transport, grouped by the reason they were refused.
	FramesRejected = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "frames_rejected_total",
			Help:      "Total number of stream frames rejected before transmission",
		},
		[]string{"reason"},
	)

	// RecoveryEvents tracks RecoveryStarted/RecoveryComplete transitions
	// observed by the recovery monitor.
	RecoveryEvents = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "recovery_events_total",
			Help:      "Total number of streaming recovery state transitions",
		},
		[]string{"event"}, // started, complete
	)

	// DegradedSessions reports whether the adaptation state currently
	// considers the stream degraded-safe (1) or nominal (0).
	DegradedSessions = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "degraded_safe",
			Help:      "1 if the most recent adaptation decision is degraded-safe, 0 otherwise",
		},
	)
)
