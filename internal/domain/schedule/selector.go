package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/opencanoetiming/c123-scoring/internal/repository"
)

// DefaultKeyPrefix scopes the selection in the key-value store.
const DefaultKeyPrefix = "c123-scoring"

// SelectorConfig configures a Selector.
type SelectorConfig struct {
	Store     repository.KeyValueStore
	Logger    *slog.Logger
	KeyPrefix string
}

// Selector remembers which race the judge works on across restarts.
type Selector struct {
	store    repository.KeyValueStore
	logger   *slog.Logger
	key      string
	selected string
}

// NewSelector creates a selector with nothing selected.
func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &Selector{
		store:  cfg.Store,
		logger: cfg.Logger,
		key:    cfg.KeyPrefix + "-selected-race",
	}
}

// Load restores the persisted selection.
func (s *Selector) Load(ctx context.Context) {
	if s.store == nil {
		return
	}
	id, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to read selected race", "error", err)
		}
		return
	}
	s.selected = id
}

// Selected returns the selected race id, "" when none.
func (s *Selector) Selected() string {
	return s.selected
}

// Select stores an explicit selection. An empty id clears it.
func (s *Selector) Select(ctx context.Context, id string) {
	s.selected = id
	if s.store == nil {
		return
	}
	var err error
	if id == "" {
		err = s.store.Delete(ctx, s.key)
	} else {
		err = s.store.Set(ctx, s.key, id)
	}
	if err != nil {
		s.logger.Warn("failed to save selected race", "race_id", id, "error", err)
	}
}

// Resolve returns the race to work on. With nothing selected the running race
// is selected automatically. A selection missing from p is kept, since the
// race may come back in a later snapshot, but resolves to nothing.
func (s *Selector) Resolve(ctx context.Context, p Projection) (ProcessedRace, bool) {
	if s.selected == "" {
		if p.Running == nil {
			return ProcessedRace{}, false
		}
		s.logger.Info("auto-selected running race", "race_id", p.Running.RaceID)
		s.Select(ctx, p.Running.RaceID)
	}
	return p.Lookup(s.selected)
}
