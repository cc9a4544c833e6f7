// Package config loads and validates the server's YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Config is the root configuration for the roomhub server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Chat   ChatConfig   `yaml:"chat"`
	Token  TokenConfig  `yaml:"token"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// ChatConfig holds engine and transport tuning.
type ChatConfig struct {
	// RoomTopicDepth is the per-subscriber buffer of each room topic.
	RoomTopicDepth int `yaml:"room_topic_depth"`

	// DirectoryTopicDepth is the per-subscriber buffer of the directory
	// topic; at 1, a lagging subscriber sees only the latest event.
	DirectoryTopicDepth int `yaml:"directory_topic_depth"`

	// WriteTimeout bounds each websocket write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// TokenConfig holds token service settings.
type TokenConfig struct {
	Length        int           `yaml:"length"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Charset       string        `yaml:"charset"`
	MaxAttempts   int           `yaml:"max_attempts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
}
