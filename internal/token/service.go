package token

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var (
	// ErrExhausted means a fresh unique code could not be generated
	// within the attempt budget.
	ErrExhausted = errors.New("token space exhausted")

	// ErrNotFound means the code is unknown, already consumed, or expired.
	ErrNotFound = errors.New("token not found")
)

// Config holds token service settings.
type Config struct {
	// Length is the number of characters per code.
	Length int

	// TTL is how long an unconsumed code stays valid.
	TTL time.Duration

	// SweepInterval is how often expired codes are collected.
	SweepInterval time.Duration

	// Charset is the code alphabet. The default omits easily-confused
	// characters (0/O, 1/I).
	Charset string

	// MaxAttempts bounds collision retries per Create call.
	MaxAttempts int
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		Length:        6,
		TTL:           120 * time.Second,
		SweepInterval: 5 * time.Second,
		Charset:       "ABCDEFGHJKLMNPQRSTUVWXYZ23456789",
		MaxAttempts:   3,
	}
}

// Service issues and consumes access codes.
type Service struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	codes map[string]time.Time // code -> issued at
}

// NewService creates a token service. Run must be called for expiry to
// take effect.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Length < 1 {
		cfg.Length = def.Length
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.Charset == "" {
		cfg.Charset = def.Charset
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	return &Service{
		cfg:    cfg,
		logger: logger,
		codes:  make(map[string]time.Time),
	}
}

// Create issues a fresh unique code. Returns ErrExhausted when the
// attempt budget runs out without finding an unused code.
func (s *Service) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		code := s.generate()
		if _, taken := s.codes[code]; taken {
			continue
		}
		s.codes[code] = time.Now()
		s.logger.Debug("token issued", "token", code)
		return code, nil
	}
	return "", ErrExhausted
}

// Connect consumes a code exactly once.
func (s *Service) Connect(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[code]; !ok {
		return ErrNotFound
	}
	delete(s.codes, code)
	s.logger.Debug("token consumed", "token", code)
	return nil
}

// List enumerates the currently live codes.
func (s *Service) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.codes))
	for code := range s.codes {
		out = append(out, code)
	}
	return out
}

// Run sweeps expired codes every SweepInterval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Service) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, issuedAt := range s.codes {
		if now.Sub(issuedAt) > s.cfg.TTL {
			delete(s.codes, code)
			s.logger.Debug("token expired", "token", code)
		}
	}
}

func (s *Service) generate() string {
	var b strings.Builder
	b.Grow(s.cfg.Length)
	for i := 0; i < s.cfg.Length; i++ {
		b.WriteByte(s.cfg.Charset[rand.IntN(len(s.cfg.Charset))])
	}
	return b.String()
}
