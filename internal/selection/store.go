package selection

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/resilience"
)

const (
	DefaultKey         = "theme_customization_overlay_packages"
	DefaultMaxAttempts = 5
	DefaultBaseBackoff = 10 * time.Millisecond
	DefaultMaxBackoff  = 500 * time.Millisecond
)

// Config configures a Store
type Config struct {
	Key         string
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultConfig returns the store defaults
func DefaultConfig() Config {
	return Config{
		Key:         DefaultKey,
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// Store merges partial updates into the shared selection document
type Store struct {
	backend  Backend
	breaker  *resilience.Breaker
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// NewStore creates a store over backend. Zero config fields take defaults;
// breaker, logger and observer may be nil.
func NewStore(backend Backend, cfg Config, breaker *resilience.Breaker, logger *zap.Logger, observer Observer) *Store {
	defaults := DefaultConfig()
	if cfg.Key == "" {
		cfg.Key = defaults.Key
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaults.BaseBackoff
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = max(defaults.MaxBackoff, cfg.BaseBackoff)
	}
	if breaker == nil {
		breaker = resilience.New(backend.Name(), resilience.Settings{
			IsSuccessful: backendHealthy,
		})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &Store{
		backend:  backend,
		breaker:  breaker,
		cfg:      cfg,
		logger:   logger.With(zap.String("backend", backend.Name()), zap.String("key", cfg.Key)),
		observer: observer,
	}
}

// BreakerSettings returns breaker settings that treat lost races as healthy calls
func BreakerSettings() resilience.Settings {
	settings := resilience.DefaultSettings()
	settings.IsSuccessful = backendHealthy
	return settings
}

func backendHealthy(err error) bool {
	return err == nil || errors.Is(err, ErrVersionMismatch)
}

// Key returns the document key this store writes
func (s *Store) Key() string {
	return s.cfg.Key
}

// Read returns a copy of the current document
func (s *Store) Read(ctx context.Context) (Document, error) {
	data, _, err := s.get(ctx)
	if err != nil {
		return nil, &WriteError{Kind: ErrUnderlyingStore, Key: s.cfg.Key, Err: err}
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, &WriteError{Kind: ErrParseFailure, Key: s.cfg.Key, Err: err}
	}
	return doc, nil
}

// Merge writes updates into the document without touching other keys.
// Each attempt reads the latest version, patches it and swaps it in; a lost
// race is retried up to MaxAttempts times.
func (s *Store) Merge(ctx context.Context, updates Document) error {
	backendName := s.backend.Name()
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		s.observer.MergeAttempt(backendName)

		data, version, err := s.get(ctx)
		if err != nil {
			return s.fail(ErrUnderlyingStore, OutcomeStoreFailed, attempt, err)
		}

		current, err := DecodeRaw(data)
		if err != nil {
			return s.fail(ErrParseFailure, OutcomeParseFailed, attempt, err)
		}

		next, err := current.Patch(updates)
		if err != nil {
			return s.fail(ErrUnderlyingStore, OutcomeStoreFailed, attempt, err)
		}
		encoded, err := next.Encode()
		if err != nil {
			return s.fail(ErrUnderlyingStore, OutcomeStoreFailed, attempt, err)
		}

		if version != NoVersion && bytes.Equal(encoded, data) {
			s.observer.MergeOutcome(backendName, OutcomeUnchanged)
			return nil
		}

		_, err = resilience.Call(ctx, s.breaker, func(ctx context.Context) (Version, error) {
			return s.backend.CompareAndSwap(ctx, s.cfg.Key, version, encoded)
		})
		if err == nil {
			s.logger.Debug("selection document written",
				zap.Int("attempt", attempt),
				zap.Strings("categories", categoryNames(updates)))
			s.observer.MergeOutcome(backendName, OutcomeWritten)
			return nil
		}
		if !errors.Is(err, ErrVersionMismatch) {
			return s.fail(ErrUnderlyingStore, OutcomeStoreFailed, attempt, err)
		}

		lastErr = err
		s.observer.MergeConflict(backendName)
		s.logger.Debug("selection document changed concurrently, retrying", zap.Int("attempt", attempt))

		if attempt < s.cfg.MaxAttempts {
			if err := sleep(ctx, s.backoff(attempt)); err != nil {
				return s.fail(ErrUnderlyingStore, OutcomeStoreFailed, attempt, err)
			}
		}
	}

	return s.fail(ErrConflict, OutcomeConflict, s.cfg.MaxAttempts, lastErr)
}

func (s *Store) get(ctx context.Context) ([]byte, Version, error) {
	var (
		data    []byte
		version Version
	)
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, version, err = s.backend.Get(ctx, s.cfg.Key)
		return err
	})
	return data, version, err
}

func (s *Store) fail(kind error, outcome Outcome, attempts int, err error) error {
	s.observer.MergeOutcome(s.backend.Name(), outcome)
	s.logger.Error("selection merge failed",
		zap.String("kind", kind.Error()),
		zap.Int("attempts", attempts),
		zap.Error(err))
	return &WriteError{Kind: kind, Key: s.cfg.Key, Attempts: attempts, Err: err}
}

// backoff returns a jittered delay in [d/2, d) where d doubles per attempt
func (s *Store) backoff(attempt int) time.Duration {
	d := s.cfg.BaseBackoff << (attempt - 1)
	if d <= 0 || d > s.cfg.MaxBackoff {
		d = s.cfg.MaxBackoff
	}
	half := d / 2
	return half + rand.N(half+1)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func categoryNames(d Document) []string {
	keys := d.Categories()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}
