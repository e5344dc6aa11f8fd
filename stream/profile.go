// Package stream implements the real-time frame-sending engine (C7):
// jitter-tolerant frame assembly, network-condition-driven recovery
// detection, and adaptive keyframing, layered over a fire-and-forget
// transport.Transport.
package stream

// JitterStrategy names how the engine fills in an empty channel update.
type JitterStrategy string

const (
	JitterHoldLast JitterStrategy = "hold_last"
	JitterDrop     JitterStrategy = "drop"
	JitterLerp     JitterStrategy = "lerp"
)

// Profile is the tunable, user-facing description of one stream's
// latency/resilience tradeoff and keyframing cadence.
type Profile struct {
	LatencyWeight    float64
	ResilienceWeight float64
	KeyframeInterval int
	// ExplicitJitter, if non-empty, overrides the weight-derived jitter
	// strategy selection below (e.g. to request Drop, which the weighted
	// selection never picks on its own).
	ExplicitJitter JitterStrategy
}

// CompiledProfile is a Profile with its jitter strategy resolved once at
// construction, so every Send call reuses the same decision instead of
// recomputing it from the weights.
type CompiledProfile struct {
	jitter           JitterStrategy
	keyframeInterval int
	latencyFavored   bool
}

// Compile resolves p's jitter strategy: latency-favored profiles
// (latency_weight >= resilience_weight) hold the last frame;
// resilience-favored profiles interpolate. An explicit strategy always
// wins.
func Compile(p Profile) CompiledProfile {
	strategy := p.ExplicitJitter
	if strategy == "" {
		if p.LatencyWeight >= p.ResilienceWeight {
			strategy = JitterHoldLast
		} else {
			strategy = JitterLerp
		}
	}
	interval := p.KeyframeInterval
	if interval <= 0 {
		interval = 30
	}
	return CompiledProfile{
		jitter:           strategy,
		keyframeInterval: interval,
		latencyFavored:   p.LatencyWeight >= p.ResilienceWeight,
	}
}

// JitterStrategy returns the resolved strategy.
func (c CompiledProfile) JitterStrategy() JitterStrategy { return c.jitter }

// KeyframeInterval returns the baseline keyframe cadence, in frames.
func (c CompiledProfile) KeyframeInterval() int { return c.keyframeInterval }

// LatencyFavored reports whether this profile weighted latency at least
// as heavily as resilience, which governs how the adaptation state
// reacts once stable conditions return (§4.7).
func (c CompiledProfile) LatencyFavored() bool { return c.latencyFavored }
