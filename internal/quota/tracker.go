// Package quota enforces a per-identity-class daily request ceiling.
package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/model"
)

// Default daily ceilings.
const (
	DefaultGuestCeiling         = 7
	DefaultAuthenticatedCeiling = 50
)

const (
	keyPrefix  = "quota."
	dateLayout = "2006-01-02"
)

// Store is the persistence the tracker needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Config configures a Tracker.
type Config struct {
	Ceilings map[model.IdentityClass]int
	Location *time.Location
	Now      func() time.Time
}

// DefaultConfig returns the default ceilings in the local time zone.
func DefaultConfig() Config {
	return Config{
		Ceilings: map[model.IdentityClass]int{
			model.IdentityGuest:         DefaultGuestCeiling,
			model.IdentityAuthenticated: DefaultAuthenticatedCeiling,
		},
		Location: time.Local,
		Now:      time.Now,
	}
}

// State is the persisted counter for one identity class.
type State struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Tracker counts requests per identity class and calendar day.
type Tracker struct {
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	location *time.Location
	ceilings map[model.IdentityClass]int
	mu       sync.Mutex
}

// NewTracker creates a tracker. Zero-valued config fields take defaults.
func NewTracker(store Store, cfg Config, logger *slog.Logger) *Tracker {
	defaults := DefaultConfig()
	if cfg.Ceilings == nil {
		cfg.Ceilings = defaults.Ceilings
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	ceilings := make(map[model.IdentityClass]int, len(cfg.Ceilings))
	for class, ceiling := range cfg.Ceilings {
		ceilings[class] = ceiling
	}

	return &Tracker{
		store:    store,
		logger:   logger,
		now:      cfg.Now,
		location: cfg.Location,
		ceilings: ceilings,
	}
}

// Ceiling returns the configured daily ceiling for class. Unknown classes get
// the guest ceiling.
func (t *Tracker) Ceiling(class model.IdentityClass) int {
	if ceiling, ok := t.ceilings[class]; ok {
		return ceiling
	}
	return t.ceilings[model.IdentityGuest]
}

// CheckAndReserve returns nil when class is still under its ceiling today and
// an error wrapping common.ErrQuotaExceeded otherwise. A successful guarded
// operation must be followed by Commit.
func (t *Tracker) CheckAndReserve(ctx context.Context, class model.IdentityClass) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.load(ctx, class)
	ceiling := t.Ceiling(class)
	if state.Count >= ceiling {
		t.logger.Info("quota exhausted",
			"identity", class,
			"count", state.Count,
			"ceiling", ceiling)
		return fmt.Errorf("%w: %d of %d requests used today", common.ErrQuotaExceeded, state.Count, ceiling)
	}
	return nil
}

// Commit records one consumed request for class today.
func (t *Tracker) Commit(ctx context.Context, class model.IdentityClass) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.load(ctx, class)
	state.Count++
	if err := t.save(ctx, class, state); err != nil {
		t.logger.Warn("failed to persist quota commit",
			"identity", class,
			"error", err)
		return err
	}

	t.logger.Debug("quota committed",
		"identity", class,
		"count", state.Count,
		"date", state.Date)
	return nil
}

// Remaining returns how many requests class may still make today.
func (t *Tracker) Remaining(ctx context.Context, class model.IdentityClass) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.Ceiling(class) - t.load(ctx, class).Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Used returns the number of requests class has made today.
func (t *Tracker) Used(ctx context.Context, class model.IdentityClass) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx, class).Count
}

func (t *Tracker) today() string {
	return t.now().In(t.location).Format(dateLayout)
}

// load reads the state for class, treating missing, unreadable, or stale data
// as a fresh day. A stale date is rewritten to today best-effort.
func (t *Tracker) load(ctx context.Context, class model.IdentityClass) State {
	today := t.today()
	fresh := State{Date: today}

	raw, ok, err := t.store.Get(ctx, key(class))
	if err != nil {
		t.logger.Warn("quota store unavailable, assuming fresh day",
			"identity", class,
			"error", err)
		return fresh
	}
	if !ok {
		return fresh
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil || state.Count < 0 {
		t.logger.Warn("malformed quota state, assuming fresh day",
			"identity", class,
			"value", raw)
		return fresh
	}

	if state.Date != today {
		t.logger.Debug("quota day rolled over",
			"identity", class,
			"previous_date", state.Date,
			"date", today)
		if err := t.save(ctx, class, fresh); err != nil {
			t.logger.Warn("failed to persist quota rollover", "identity", class, "error", err)
		}
		return fresh
	}

	return state
}

func (t *Tracker) save(ctx context.Context, class model.IdentityClass, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode quota state: %w", err)
	}
	if err := t.store.Set(ctx, key(class), string(data)); err != nil {
		return fmt.Errorf("failed to save quota state: %w", err)
	}
	return nil
}

func key(class model.IdentityClass) string {
	return keyPrefix + string(class)
}
