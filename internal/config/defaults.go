package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr              = "127.0.0.1:3030"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second

	DefaultRoomTopicDepth      = 10
	DefaultDirectoryTopicDepth = 1
	DefaultWriteTimeout        = 10 * time.Second

	DefaultTokenLength      = 6
	DefaultTokenTTL         = 120 * time.Second
	DefaultSweepInterval    = 5 * time.Second
	DefaultTokenCharset     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	DefaultTokenMaxAttempts = 3

	DefaultLogLevel = "info"
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Chat defaults
	if c.Chat.RoomTopicDepth == 0 {
		c.Chat.RoomTopicDepth = DefaultRoomTopicDepth
	}
	if c.Chat.DirectoryTopicDepth == 0 {
		c.Chat.DirectoryTopicDepth = DefaultDirectoryTopicDepth
	}
	if c.Chat.WriteTimeout == 0 {
		c.Chat.WriteTimeout = DefaultWriteTimeout
	}

	// Token defaults
	if c.Token.Length == 0 {
		c.Token.Length = DefaultTokenLength
	}
	if c.Token.TTL == 0 {
		c.Token.TTL = DefaultTokenTTL
	}
	if c.Token.SweepInterval == 0 {
		c.Token.SweepInterval = DefaultSweepInterval
	}
	if c.Token.Charset == "" {
		c.Token.Charset = DefaultTokenCharset
	}
	if c.Token.MaxAttempts == 0 {
		c.Token.MaxAttempts = DefaultTokenMaxAttempts
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
