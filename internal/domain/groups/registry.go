package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/opencanoetiming/c123-scoring/internal/repository"
)

// DefaultKeyPrefix scopes group blobs in the key-value store.
const DefaultKeyPrefix = "c123-scoring"

// Config configures a Registry.
type Config struct {
	Store     repository.KeyValueStore
	Logger    *slog.Logger
	KeyPrefix string
}

// Registry holds the gate groups of one race and the active selection.
// It is not safe for concurrent use.
type Registry struct {
	store      repository.KeyValueStore
	logger     *slog.Logger
	prefix     string
	raceID     string
	totalGates int
	groups     []Group
	activeID   string

	shortcuts        []shortcut
	shortcutsEnabled bool
}

// NewRegistry creates a registry with only the all-gates group.
func NewRegistry(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	r := &Registry{
		store:            cfg.Store,
		logger:           cfg.Logger,
		prefix:           cfg.KeyPrefix,
		activeID:         AllGatesID,
		shortcutsEnabled: true,
	}
	r.rebind()
	return r
}

func (r *Registry) groupsKey() string {
	return fmt.Sprintf("%s-groups-%s", r.prefix, r.raceID)
}

func (r *Registry) activeKey() string {
	return fmt.Sprintf("%s-active-group-%s", r.prefix, r.raceID)
}

// Load replaces the registry contents with the persisted groups of raceID.
// A stored active id that no longer names a group falls back to all gates.
func (r *Registry) Load(ctx context.Context, raceID string, totalGates int) {
	r.raceID = raceID
	r.totalGates = totalGates
	r.groups = nil
	r.activeID = AllGatesID
	defer r.rebind()

	if blob, ok := r.read(ctx, r.groupsKey()); ok {
		var stored storedGroups
		if err := json.Unmarshal([]byte(blob), &stored); err != nil {
			r.logger.Warn("discarding gate groups", "race_id", raceID, "error", err)
		} else {
			r.groups = dedupe(stored.Groups)
		}
	}

	if id, ok := r.read(ctx, r.activeKey()); ok && r.index(id) >= 0 {
		r.activeID = id
	}
}

// SetTotalGates updates the gate count of the race configuration.
func (r *Registry) SetTotalGates(n int) {
	r.totalGates = n
}

// TotalGates returns the gate count of the race configuration.
func (r *Registry) TotalGates() int {
	return r.totalGates
}

// Groups returns every group in display order: all gates first, then user
// groups in creation order.
func (r *Registry) Groups() []Group {
	out := make([]Group, 0, len(r.groups)+1)
	out = append(out, AllGates())
	for _, g := range r.groups {
		out = append(out, g.clone())
	}
	return out
}

// UserGroups returns only the user-defined groups.
func (r *Registry) UserGroups() []Group {
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g.clone())
	}
	return out
}

// Get returns the group with id.
func (r *Registry) Get(id string) (Group, bool) {
	if id == AllGatesID {
		return AllGates(), true
	}
	i := r.index(id)
	if i < 0 {
		return Group{}, false
	}
	return r.groups[i].clone(), true
}

// ActiveID returns the id of the selected group.
func (r *Registry) ActiveID() string {
	return r.activeID
}

// Active returns the selected group.
func (r *Registry) Active() Group {
	g, ok := r.Get(r.activeID)
	if !ok {
		return AllGates()
	}
	return g
}

// Add validates and appends a group. An empty id is replaced by a new uuid.
func (r *Registry) Add(ctx context.Context, g Group) (Group, error) {
	if strings.TrimSpace(g.ID) == "" {
		g.ID = uuid.NewString()
	}
	if g.ID == AllGatesID {
		return Group{}, ErrReservedID
	}
	if r.index(g.ID) >= 0 {
		return Group{}, fmt.Errorf("%w: %s", ErrDuplicateGroup, g.ID)
	}
	normalized, err := r.normalize(g)
	if err != nil {
		return Group{}, err
	}

	r.groups = append(r.groups, normalized)
	r.rebind()
	r.saveGroups(ctx)
	return normalized.clone(), nil
}

// Update replaces an existing group.
func (r *Registry) Update(ctx context.Context, g Group) (Group, error) {
	if g.ID == AllGatesID {
		return Group{}, ErrReservedID
	}
	i := r.index(g.ID)
	if i < 0 {
		return Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, g.ID)
	}
	normalized, err := r.normalize(g)
	if err != nil {
		return Group{}, err
	}

	r.groups[i] = normalized
	r.rebind()
	r.saveGroups(ctx)
	return normalized.clone(), nil
}

// Remove deletes a group. Removing the active group selects all gates.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if id == AllGatesID {
		return ErrReservedID
	}
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, id)
	}

	r.groups = slices.Delete(r.groups, i, i+1)
	r.rebind()
	r.saveGroups(ctx)
	if r.activeID == id {
		r.activeID = AllGatesID
		r.saveActive(ctx)
	}
	return nil
}

// SetActive selects a group. Unknown ids are ignored and false is returned.
func (r *Registry) SetActive(ctx context.Context, id string) bool {
	if _, ok := r.Get(id); !ok {
		return false
	}
	r.activeID = id
	r.saveActive(ctx)
	return true
}

// VisibleGates returns the gate numbers shown for the active group, limited to
// the configured gate count when it is known.
func (r *Registry) VisibleGates() []int {
	active := r.Active()
	if active.IsAll() {
		out := make([]int, r.totalGates)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	out := make([]int, 0, len(active.Gates))
	for _, n := range active.Gates {
		if r.totalGates == 0 || n <= r.totalGates {
			out = append(out, n)
		}
	}
	return out
}

// IsGateVisible reports whether gate n is shown for the active group.
func (r *Registry) IsGateVisible(n int) bool {
	if r.totalGates > 0 && (n < 1 || n > r.totalGates) {
		return false
	}
	return r.Active().Contains(n)
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.groups, func(g Group) bool { return g.ID == id })
}

// normalize trims the name and turns gates into a sorted set within range.
func (r *Registry) normalize(g Group) (Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return Group{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if len(g.Gates) == 0 {
		return Group{}, fmt.Errorf("%w: at least one gate required", ErrInvalidInput)
	}

	gates := slices.Clone(g.Gates)
	for _, n := range gates {
		if n < 1 || (r.totalGates > 0 && n > r.totalGates) {
			return Group{}, fmt.Errorf("%w: gate %d outside 1..%d", ErrInvalidInput, n, r.totalGates)
		}
	}
	slices.Sort(gates)
	g.Gates = slices.Compact(gates)
	return g, nil
}

func dedupe(stored []Group) []Group {
	seen := make(map[string]bool, len(stored))
	out := make([]Group, 0, len(stored))
	for _, g := range stored {
		if g.ID == "" || g.ID == AllGatesID || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		out = append(out, g)
	}
	return out
}

func (r *Registry) read(ctx context.Context, k string) (string, bool) {
	if r.store == nil {
		return "", false
	}
	v, err := r.store.Get(ctx, k)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("failed to read gate groups", "key", k, "error", err)
		}
		return "", false
	}
	return v, true
}

func (r *Registry) write(ctx context.Context, k, v string) {
	if r.store == nil {
		return
	}
	if err := r.store.Set(ctx, k, v); err != nil {
		r.logger.Warn("failed to save gate groups", "key", k, "error", err)
	}
}

func (r *Registry) saveGroups(ctx context.Context) {
	groups := r.groups
	if groups == nil {
		groups = []Group{}
	}
	blob, err := json.Marshal(storedGroups{Groups: groups})
	if err != nil {
		r.logger.Warn("failed to encode gate groups", "error", err)
		return
	}
	r.write(ctx, r.groupsKey(), string(blob))
}

func (r *Registry) saveActive(ctx context.Context) {
	r.write(ctx, r.activeKey(), r.activeID)
}
