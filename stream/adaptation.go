package stream

// AdaptationState is the mutable, read-modified-on-every-send state that
// governs how a stream shapes its frames: how often it forces a
// keyframe, how much delta-history depth it keeps, how much slack it
// gives its deadline, and whether it currently runs in a degraded-safe
// mode.
type AdaptationState struct {
	KeyframeInterval    int
	DeltaDepth          int
	DeadlineOffsetMS    int
	DegradedSafe        bool
	FramesSinceKeyframe int
	LastEvent           string // "degrade", "recover", or "steady" before the first event
}

const (
	baselineDeltaDepth       = 4
	keyframeIntervalStep     = 5
	deadlineOffsetDegradedMS = 40
	minKeyframeInterval      = 1
	maxDeltaDepth            = 8
)

// Baseline returns the nominal adaptation state for a compiled profile:
// no degradation, the profile's configured keyframe cadence, and no
// extra deadline slack.
func Baseline(profile CompiledProfile) AdaptationState {
	return AdaptationState{
		KeyframeInterval: profile.KeyframeInterval(),
		DeltaDepth:       baselineDeltaDepth,
		LastEvent:        "steady",
	}
}

// ShouldEmitKeyframe reports whether the next frame must carry a full
// keyframe rather than a delta, and advances the internal counter. It is
// the single state-mutating read in the send path: increment
// frames_since_keyframe, then force a keyframe and reset the counter
// once it reaches keyframe_interval (§4.7 step 3).
func (a *AdaptationState) ShouldEmitKeyframe() bool {
	a.FramesSinceKeyframe++
	interval := a.KeyframeInterval
	if interval <= 0 {
		interval = minKeyframeInterval
	}
	if a.FramesSinceKeyframe >= interval {
		a.FramesSinceKeyframe = 0
		return true
	}
	return false
}

// ApplyEvent reacts to a RecoveryEvent fired by a RecoveryMonitor.
// Entering recovery widens the keyframe interval and deadline slack
// while shrinking delta depth, trading latency for resilience under
// loss. Leaving recovery only shrinks the interval back down and grows
// delta depth again for latency-favored profiles; a resilience-favored
// profile stays at its wider, steadier settings once conditions clear.
func (a *AdaptationState) ApplyEvent(event RecoveryEvent, latencyFavored bool, baseline AdaptationState) {
	switch event {
	case RecoveryStarted:
		a.DegradedSafe = true
		a.LastEvent = "degrade"
		a.KeyframeInterval += keyframeIntervalStep
		a.DeadlineOffsetMS = deadlineOffsetDegradedMS
		if a.DeltaDepth > minKeyframeInterval {
			a.DeltaDepth--
		}
	case RecoveryComplete:
		a.DegradedSafe = false
		a.LastEvent = "recover"
		if latencyFavored {
			a.KeyframeInterval -= keyframeIntervalStep
			if a.KeyframeInterval < baseline.KeyframeInterval {
				a.KeyframeInterval = baseline.KeyframeInterval
			}
			if a.DeltaDepth < maxDeltaDepth {
				a.DeltaDepth++
			}
			a.DeadlineOffsetMS = baseline.DeadlineOffsetMS
		}
	}
}
