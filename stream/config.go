package stream

import "github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/config"

// ProfileFromConfig builds a Profile from the process-level streaming
// configuration. JitterStrategy, when set, is taken as an explicit
// override; otherwise New's caller is expected to set the
// latency/resilience weights directly.
func ProfileFromConfig(cfg config.StreamingConfig, latencyWeight, resilienceWeight float64) Profile {
	p := Profile{
		LatencyWeight:    latencyWeight,
		ResilienceWeight: resilienceWeight,
		KeyframeInterval: cfg.KeyframeInterval,
	}
	switch cfg.JitterStrategy {
	case string(JitterHoldLast):
		p.ExplicitJitter = JitterHoldLast
	case string(JitterDrop):
		p.ExplicitJitter = JitterDrop
	case string(JitterLerp):
		p.ExplicitJitter = JitterLerp
	}
	return p
}
