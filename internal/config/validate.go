package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return errors.New("server.read_header_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}

	if c.Chat.RoomTopicDepth < 1 {
		return errors.New("chat.room_topic_depth must be >= 1")
	}
	if c.Chat.DirectoryTopicDepth < 1 {
		return errors.New("chat.directory_topic_depth must be >= 1")
	}
	if c.Chat.WriteTimeout <= 0 {
		return errors.New("chat.write_timeout must be positive")
	}

	if c.Token.Length < 1 {
		return errors.New("token.length must be >= 1")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token.ttl must be positive")
	}
	if c.Token.SweepInterval <= 0 {
		return errors.New("token.sweep_interval must be positive")
	}
	if c.Token.Charset == "" {
		return errors.New("token.charset is required")
	}
	if c.Token.MaxAttempts < 1 {
		return errors.New("token.max_attempts must be >= 1")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}
