package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/logger"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/internal/metrics"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/message"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/session"
	"github.com/y-link-dmx/Authenticated-Lighting-Network-Protocol/transport"
)

// SendRequest is one channel update a caller wants streamed. Groups and
// Metadata are optional; Metadata is annotated in place with recovery
// and adaptation fields before the frame is transmitted.
type SendRequest struct {
	ChannelFormat session.ChannelFormat
	Channels      []uint16
	Priority      uint8
	Groups        map[string][]uint16
	Metadata      map[string]interface{}
}

// Stream is a single session's streaming engine: it owns the jitter
// strategy, the last transmitted frame, and the recovery-driven
// adaptation state, and emits fire-and-forget Frame envelopes over a
// transport.Transport.
type Stream struct {
	fsm       *session.FSM
	tr        transport.Transport
	sessionID [16]byte
	profile   CompiledProfile

	mu        sync.Mutex
	lastFrame *message.Frame
	recovery  *RecoveryMonitor
	adaptation AdaptationState
	baseline   AdaptationState
}

// New builds a Stream bound to one session's FSM and transport. fsm's
// Current and StreamingEnabled are consulted on every Send to enforce the
// authenticated/streaming-enabled gate.
func New(fsm *session.FSM, tr transport.Transport, sessionID [16]byte, profile Profile) *Stream {
	compiled := Compile(profile)
	baseline := Baseline(compiled)
	return &Stream{
		fsm:        fsm,
		tr:         tr,
		sessionID:  sessionID,
		profile:    compiled,
		recovery:   NewRecoveryMonitor(),
		adaptation: baseline,
		baseline:   baseline,
	}
}

// Send runs the full six-step send contract (§4.7): it gates on session
// state, applies the jitter strategy, reads and advances the adaptation
// state, annotates metadata, timestamps, and transmits — caching the
// result as the last frame for the next jitter fill.
func (s *Stream) Send(ctx context.Context, req SendRequest) error {
	if err := s.ensureStreamingReady(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	channels := s.applyJitterLocked(req.Channels)
	forceKeyframe := s.adaptation.ShouldEmitKeyframe()

	metadata := req.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{}, 2)
	}
	s.annotateMetadataLocked(metadata, forceKeyframe)

	frame := message.Frame{
		SessionID:     s.sessionID,
		TimestampUS:   uint64(time.Now().UnixMicro()),
		Priority:      req.Priority,
		ChannelFormat: req.ChannelFormat,
		Channels:      channels,
		Groups:        req.Groups,
		Metadata:      metadata,
	}

	data, err := message.Pack(frame)
	if err != nil {
		metrics.FramesRejected.WithLabelValues("encode_error").Inc()
		return fmt.Errorf("stream: encode frame: %w", err)
	}
	if err := s.tr.Send(ctx, data); err != nil {
		metrics.FramesRejected.WithLabelValues("transport_error").Inc()
		return message.New(message.CodeStreamTransport, err.Error())
	}

	s.lastFrame = &frame
	metrics.FramesSent.WithLabelValues(string(s.profile.JitterStrategy()), keyframeLabel(forceKeyframe)).Inc()
	return nil
}

func keyframeLabel(forced bool) string {
	if forced {
		return "true"
	}
	return "false"
}

// ensureStreamingReady reports the authenticated/streaming-enabled gate
// required before any frame leaves the engine (§4.7 step 1), using
// distinct error codes so a caller can tell "never authenticated" from
// "authenticated but streaming turned off".
func (s *Stream) ensureStreamingReady() error {
	switch s.fsm.Current().Kind {
	case session.StateReady, session.StateStreaming:
	default:
		metrics.FramesRejected.WithLabelValues("not_authenticated").Inc()
		return message.New(message.CodeStreamNotAuthenticated, "session is not in a streaming-eligible state")
	}
	if !s.fsm.StreamingEnabled() {
		metrics.FramesRejected.WithLabelValues("streaming_disabled").Inc()
		return message.New(message.CodeStreamStreamingDisabled, "streaming is not enabled for this session")
	}
	return nil
}

// applyJitterLocked transforms the outgoing channel vector per the
// compiled strategy (§4.7 "Jitter strategies"). Must be called with s.mu
// held.
func (s *Stream) applyJitterLocked(channels []uint16) []uint16 {
	switch s.profile.JitterStrategy() {
	case JitterHoldLast:
		if len(channels) == 0 && s.lastFrame != nil {
			return append([]uint16(nil), s.lastFrame.Channels...)
		}
		return channels
	case JitterDrop:
		if len(channels) == 0 {
			return nil
		}
		return channels
	case JitterLerp:
		return lerp(channels, s.lastFrameChannelsLocked())
	default:
		return channels
	}
}

func (s *Stream) lastFrameChannelsLocked() []uint16 {
	if s.lastFrame == nil {
		return nil
	}
	return s.lastFrame.Channels
}

// lerp element-wise averages next against prev, treating a missing
// previous index as 0.
func lerp(next, prev []uint16) []uint16 {
	out := make([]uint16, len(next))
	for i, v := range next {
		var p uint32
		if i < len(prev) {
			p = uint32(prev[i])
		}
		out[i] = uint16((uint32(v) + p) / 2)
	}
	return out
}

// annotateMetadataLocked stamps alpine_recovery (when the recovery
// monitor is active) and alpine_adaptation into metadata, matching the
// field set reactors on the far end key off. Must be called with s.mu
// held.
func (s *Stream) annotateMetadataLocked(metadata map[string]interface{}, forceKeyframe bool) {
	if s.recovery.Active() {
		metadata["alpine_recovery"] = map[string]interface{}{
			"phase":  "recovery",
			"reason": recoveryReasonString(s.recovery.Reason()),
		}
	}
	metadata["alpine_adaptation"] = map[string]interface{}{
		"keyframe_interval":     s.adaptation.KeyframeInterval,
		"delta_depth":           s.adaptation.DeltaDepth,
		"deadline_offset_ms":    s.adaptation.DeadlineOffsetMS,
		"degraded_safe":         s.adaptation.DegradedSafe,
		"frames_since_keyframe": s.adaptation.FramesSinceKeyframe,
		"force_keyframe":        forceKeyframe,
		"event":                 s.adaptation.LastEvent,
	}
}

func recoveryReasonString(r RecoveryReason) string {
	switch {
	case r.HighLoss:
		return "high_loss"
	case r.HighJitter:
		return "high_jitter"
	case r.HighRTT:
		return "high_rtt"
	case r.LowThroughput:
		return "low_throughput"
	default:
		return "unknown"
	}
}

// ObserveNetworkConditions feeds one sample into the recovery monitor
// and, on a state transition, updates the adaptation state and logs the
// event. Safe to call concurrently with Send.
func (s *Stream) ObserveNetworkConditions(conditions NetworkConditions) {
	s.mu.Lock()
	event := s.recovery.Feed(conditions)
	if event == "" {
		s.mu.Unlock()
		return
	}
	s.adaptation.ApplyEvent(event, s.profile.LatencyFavored(), s.baseline)
	degraded := s.adaptation.DegradedSafe
	s.mu.Unlock()

	metrics.RecoveryEvents.WithLabelValues(string(event)).Inc()
	if degraded {
		metrics.DegradedSessions.Set(1)
	} else {
		metrics.DegradedSessions.Set(0)
	}
	logger.Info("stream recovery transition",
		logger.String("event", string(event)),
		logger.Bool("degraded_safe", degraded),
	)
}
