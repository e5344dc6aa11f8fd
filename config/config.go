// Package config provides configuration loading for ALPINE controllers and
// nodes: identity material locations, transport parameters, handshake
// policy, session lifetime, control-channel timing, and the ambient
// logging/metrics knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Role identifies whether a process acts as the controller or a node in
// an ALPINE session.
type Role string

const (
	RoleController Role = "controller"
	RoleNode       Role = "node"
)

// Config is the root configuration structure for an ALPINE process.
type Config struct {
	Environment string           `yaml:"environment" json:"environment"`
	Role        Role             `yaml:"role" json:"role"`
	Identity    IdentityConfig   `yaml:"identity" json:"identity"`
	Transport   TransportConfig  `yaml:"transport" json:"transport"`
	Handshake   HandshakeConfig  `yaml:"handshake" json:"handshake"`
	Session     SessionConfig    `yaml:"session" json:"session"`
	Control     ControlConfig    `yaml:"control" json:"control"`
	Streaming   StreamingConfig  `yaml:"streaming" json:"streaming"`
	Logging     *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// IdentityConfig locates the long-term Ed25519 identity key pair used to
// sign handshake messages. Loading the key material from these paths is a
// concern for the embedding application, not this module.
type IdentityConfig struct {
	KeyPath       string `yaml:"key_path" json:"key_path"`
	TrustedPeersDir string `yaml:"trusted_peers_dir" json:"trusted_peers_dir"`
}

// TransportConfig describes the datagram endpoint a process binds to.
// Constructing the actual socket is left to the embedding application.
type TransportConfig struct {
	ListenAddress  string        `yaml:"listen_address" json:"listen_address"`
	MaxDatagramSize int          `yaml:"max_datagram_size" json:"max_datagram_size"`
	DialTimeout    time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
}

// HandshakeConfig bounds how long a handshake attempt may run and which
// peer identities are accepted.
type HandshakeConfig struct {
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	AllowedPeerIDs   []string      `yaml:"allowed_peer_ids" json:"allowed_peer_ids"`
	RequireKnownPeer bool          `yaml:"require_known_peer" json:"require_known_peer"`
}

// SessionConfig mirrors session.Config: the lifetime policy applied to
// every session created after a successful handshake.
type SessionConfig struct {
	MaxAge      time.Duration `yaml:"max_age" json:"max_age"`
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxMessages uint64        `yaml:"max_messages" json:"max_messages"`
}

// ControlConfig tunes the reliable control channel's retransmit and
// keepalive behavior.
type ControlConfig struct {
	BaseTimeout       time.Duration `yaml:"base_timeout" json:"base_timeout"`
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	DropThreshold     int           `yaml:"drop_threshold" json:"drop_threshold"`
	KeepaliveInterval time.Duration `yaml:"keepalive_interval" json:"keepalive_interval"`
	KeepaliveTimeout  time.Duration `yaml:"keepalive_timeout" json:"keepalive_timeout"`
}

// StreamingConfig tunes the streaming engine's jitter and recovery
// behavior.
type StreamingConfig struct {
	JitterStrategy   string        `yaml:"jitter_strategy" json:"jitter_strategy"` // hold_last, drop, lerp
	FrameRate        int           `yaml:"frame_rate" json:"frame_rate"`
	KeyframeInterval int           `yaml:"keyframe_interval" json:"keyframe_interval"`
	RecoveryWindow   time.Duration `yaml:"recovery_window" json:"recovery_window"`
}

// LoggingConfig controls the ambient structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig controls the prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) >= 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Role == "" {
		cfg.Role = RoleNode
	}

	if cfg.Transport.MaxDatagramSize == 0 {
		cfg.Transport.MaxDatagramSize = 1200
	}
	if cfg.Transport.DialTimeout == 0 {
		cfg.Transport.DialTimeout = 5 * time.Second
	}

	if cfg.Handshake.Timeout == 0 {
		cfg.Handshake.Timeout = 10 * time.Second
	}

	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = 24 * time.Hour
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 5 * time.Minute
	}

	if cfg.Control.BaseTimeout == 0 {
		cfg.Control.BaseTimeout = 200 * time.Millisecond
	}
	if cfg.Control.MaxAttempts == 0 {
		cfg.Control.MaxAttempts = 5
	}
	if cfg.Control.DropThreshold == 0 {
		cfg.Control.DropThreshold = 5
	}
	if cfg.Control.KeepaliveInterval == 0 {
		cfg.Control.KeepaliveInterval = 5 * time.Second
	}
	if cfg.Control.KeepaliveTimeout == 0 {
		cfg.Control.KeepaliveTimeout = 5 * time.Second
	}

	if cfg.Streaming.JitterStrategy == "" {
		cfg.Streaming.JitterStrategy = "hold_last"
	}
	if cfg.Streaming.FrameRate == 0 {
		cfg.Streaming.FrameRate = 40
	}
	if cfg.Streaming.KeyframeInterval == 0 {
		cfg.Streaming.KeyframeInterval = 30
	}
	if cfg.Streaming.RecoveryWindow == 0 {
		cfg.Streaming.RecoveryWindow = 500 * time.Millisecond
	}

	if cfg.Logging != nil {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = "info"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "json"
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stdout"
		}
	}
}
