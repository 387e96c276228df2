package checked

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/opencanoetiming/c123-scoring/internal/repository"
)

// DefaultKeyPrefix scopes ledger blobs in the key-value store.
const DefaultKeyPrefix = "c123-scoring-checked"

// Config configures a Ledger.
type Config struct {
	Store     repository.KeyValueStore
	Clock     clockwork.Clock
	Logger    *slog.Logger
	KeyPrefix string
}

// Ledger records which competitors a judge has verified, per race and gate
// group. The whole race ledger is held in memory and written back after every
// mutation. A Ledger is not safe for concurrent use; the owner serializes calls.
type Ledger struct {
	store   repository.KeyValueStore
	clock   clockwork.Clock
	logger  *slog.Logger
	prefix  string
	raceID  string
	groupID *string
	entries map[string]Entry
}

// NewLedger creates an empty ledger with no race loaded.
func NewLedger(cfg Config) *Ledger {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &Ledger{
		store:   cfg.Store,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		prefix:  cfg.KeyPrefix,
		entries: make(map[string]Entry),
	}
}

// StorageKey returns the store key of a race ledger.
func StorageKey(prefix, raceID string) string {
	if raceID == "" {
		return prefix
	}
	return prefix + "-" + raceID
}

// Load replaces the in-memory ledger with the persisted ledger of raceID.
// Missing, unreadable or mismatched blobs start an empty ledger.
func (l *Ledger) Load(ctx context.Context, raceID string) {
	l.raceID = raceID
	l.entries = make(map[string]Entry)

	if l.store == nil {
		return
	}
	key := StorageKey(l.prefix, raceID)
	blob, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			l.logger.Warn("failed to read checked ledger", "key", key, "error", err)
		}
		return
	}

	entries, err := Decode([]byte(blob))
	if err != nil {
		l.logger.Warn("discarding checked ledger", "key", key, "error", err)
		return
	}
	l.entries = entries
}

// RaceID returns the race whose ledger is loaded.
func (l *Ledger) RaceID() string {
	return l.raceID
}

// SetGroup scopes subsequent operations to a gate group. An empty id or the
// "all" id selects the all-gates scope.
func (l *Ledger) SetGroup(groupID string) {
	if groupID == "" || groupID == AllGatesKey {
		l.groupID = nil
		return
	}
	id := groupID
	l.groupID = &id
}

// GroupID returns the active group scope, "" for all gates.
func (l *Ledger) GroupID() string {
	if l.groupID == nil {
		return ""
	}
	return *l.groupID
}

func (l *Ledger) key(bib string) string {
	return Key(bib, l.groupID)
}

// IsChecked reports whether bib is checked in the active scope.
func (l *Ledger) IsChecked(bib string) bool {
	return l.entries[l.key(bib)].Checked
}

// CheckedAt returns when bib was checked in the active scope, nil if it isn't.
func (l *Ledger) CheckedAt(bib string) *time.Time {
	return l.entries[l.key(bib)].CheckedAt
}

// SetChecked overwrites the entry for bib in the active scope.
func (l *Ledger) SetChecked(ctx context.Context, bib string, checked bool) {
	l.put(bib, checked, l.clock.Now())
	l.save(ctx)
}

// ToggleChecked flips the state of bib in the active scope and returns the new state.
func (l *Ledger) ToggleChecked(ctx context.Context, bib string) bool {
	next := !l.IsChecked(bib)
	l.SetChecked(ctx, bib, next)
	return next
}

// CheckMultiple marks every bib checked with one shared timestamp.
func (l *Ledger) CheckMultiple(ctx context.Context, bibs []string) {
	now := l.clock.Now()
	for _, bib := range bibs {
		l.put(bib, true, now)
	}
	l.save(ctx)
}

// UncheckMultiple marks every bib unchecked.
func (l *Ledger) UncheckMultiple(ctx context.Context, bibs []string) {
	now := l.clock.Now()
	for _, bib := range bibs {
		l.put(bib, false, now)
	}
	l.save(ctx)
}

// ClearChecked deletes entries of the active scope. In the all-gates scope the
// whole race ledger is wiped; in a group scope only that group's entries go.
func (l *Ledger) ClearChecked(ctx context.Context) {
	if l.groupID == nil {
		l.entries = make(map[string]Entry)
	} else {
		for key, e := range l.entries {
			if e.GroupID != nil && *e.GroupID == *l.groupID {
				delete(l.entries, key)
			}
		}
	}
	l.save(ctx)
}

// Progress counts how many of bibs are checked in the active scope.
func (l *Ledger) Progress(bibs []string) Progress {
	checked := 0
	for _, bib := range bibs {
		if l.IsChecked(bib) {
			checked++
		}
	}
	return NewProgress(checked, len(bibs))
}

// Entries returns a copy of every entry of the loaded race, sorted by key.
func (l *Ledger) Entries() []Entry {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.entries[k])
	}
	return out
}

func (l *Ledger) put(bib string, checked bool, now time.Time) {
	e := Entry{Bib: bib, GroupID: l.groupID, Checked: checked}
	if checked {
		at := now
		e.CheckedAt = &at
	}
	l.entries[l.key(bib)] = e
}

func (l *Ledger) save(ctx context.Context) {
	if l.store == nil {
		return
	}
	key := StorageKey(l.prefix, l.raceID)
	blob, err := Encode(l.entries)
	if err != nil {
		l.logger.Warn("failed to encode checked ledger", "key", key, "error", err)
		return
	}
	if err := l.store.Set(ctx, key, string(blob)); err != nil {
		l.logger.Warn("failed to save checked ledger", "key", key, "error", err)
	}
}
