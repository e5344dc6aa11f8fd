package config

import "fmt"

// ValidationError describes one configuration problem. Level is either
// "error" (blocks Load) or "warning" (returned by ValidateConfiguration
// but ignored by Load).
type ValidationError struct {
	Field   string
	Message string
	Level   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfiguration checks cfg for values that would make it unsafe or
// nonsensical to run with, returning every problem found rather than
// stopping at the first one.
func ValidateConfiguration(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Role != RoleController && cfg.Role != RoleNode {
		errs = append(errs, ValidationError{
			Field: "role", Message: "must be \"controller\" or \"node\"", Level: "error",
		})
	}

	if cfg.Transport.MaxDatagramSize <= 0 {
		errs = append(errs, ValidationError{
			Field: "transport.max_datagram_size", Message: "must be positive", Level: "error",
		})
	}

	if cfg.Handshake.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field: "handshake.timeout", Message: "must be positive", Level: "error",
		})
	}

	if cfg.Control.MaxAttempts <= 0 {
		errs = append(errs, ValidationError{
			Field: "control.max_attempts", Message: "must be positive", Level: "error",
		})
	}
	if cfg.Control.DropThreshold < cfg.Control.MaxAttempts {
		errs = append(errs, ValidationError{
			Field:   "control.drop_threshold",
			Message: "should be at least control.max_attempts",
			Level:   "warning",
		})
	}

	switch cfg.Streaming.JitterStrategy {
	case "hold_last", "drop", "lerp":
	default:
		errs = append(errs, ValidationError{
			Field:   "streaming.jitter_strategy",
			Message: "must be one of hold_last, drop, lerp",
			Level:   "error",
		})
	}
	if cfg.Streaming.FrameRate <= 0 {
		errs = append(errs, ValidationError{
			Field: "streaming.frame_rate", Message: "must be positive", Level: "error",
		})
	}

	return errs
}
