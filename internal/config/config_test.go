package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: 0.0.0.0:8080
chat:
  room_topic_depth: 32
token:
  ttl: 60s
log:
  level: debug
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "0.0.0.0:8080")
	}
	if cfg.Chat.RoomTopicDepth != 32 {
		t.Errorf("Chat.RoomTopicDepth = %d, want 32", cfg.Chat.RoomTopicDepth)
	}
	if cfg.Token.TTL != 60*time.Second {
		t.Errorf("Token.TTL = %v, want 60s", cfg.Token.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_LISTEN_ADDR", "127.0.0.1:9999")

	yaml := `
server:
  addr: ${TEST_LISTEN_ADDR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9999")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "server:\n  addr: 0.0.0.0:8080\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Chat.RoomTopicDepth != DefaultRoomTopicDepth {
		t.Errorf("Chat.RoomTopicDepth = %d, want default %d", cfg.Chat.RoomTopicDepth, DefaultRoomTopicDepth)
	}
	if cfg.Chat.DirectoryTopicDepth != DefaultDirectoryTopicDepth {
		t.Errorf("Chat.DirectoryTopicDepth = %d, want default %d", cfg.Chat.DirectoryTopicDepth, DefaultDirectoryTopicDepth)
	}
	if cfg.Token.TTL != DefaultTokenTTL {
		t.Errorf("Token.TTL = %v, want default %v", cfg.Token.TTL, DefaultTokenTTL)
	}
	if cfg.Token.Charset != DefaultTokenCharset {
		t.Errorf("Token.Charset = %q, want default %q", cfg.Token.Charset, DefaultTokenCharset)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := *Default()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr is required",
		},
		{
			name:    "zero room depth",
			mutate:  func(c *Config) { c.Chat.RoomTopicDepth = -1 },
			wantErr: "chat.room_topic_depth must be >= 1",
		},
		{
			name:    "zero directory depth",
			mutate:  func(c *Config) { c.Chat.DirectoryTopicDepth = -1 },
			wantErr: "chat.directory_topic_depth must be >= 1",
		},
		{
			name:    "negative token ttl",
			mutate:  func(c *Config) { c.Token.TTL = -time.Second },
			wantErr: "token.ttl must be positive",
		},
		{
			name:    "empty charset",
			mutate:  func(c *Config) { c.Token.Charset = "" },
			wantErr: "token.charset is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: `log.level: unknown log level "verbose"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
