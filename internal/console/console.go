package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/opencanoetiming/c123-scoring/internal/domain/checked"
	"github.com/opencanoetiming/c123-scoring/internal/domain/focus"
	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/opencanoetiming/c123-scoring/internal/domain/groups"
	"github.com/opencanoetiming/c123-scoring/internal/domain/keyboard"
	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
	"github.com/opencanoetiming/c123-scoring/internal/domain/scoring"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/opencanoetiming/c123-scoring/internal/repository"
)

// Config configures a Console.
type Config struct {
	Store      repository.KeyValueStore
	Clock      clockwork.Clock
	Logger     *slog.Logger
	KeyPrefix  string
	WrapAround bool
	StaleAfter time.Duration
	MaxNotices int
}

// Console is the scoring state of one judge station: the selected race, its
// gate groups and checked ledger, the grid and the keyboard cursor. All
// methods are serialized by one lock, so feed updates and judge input never
// interleave.
type Console struct {
	mu         sync.Mutex
	logger     *slog.Logger
	clock      clockwork.Clock
	staleAfter time.Duration

	selector *schedule.Selector
	registry *groups.Registry
	ledger   *checked.Ledger
	nav      *focus.Navigator
	notices  *Notifier

	snap   feed.Snapshot
	proj   schedule.Projection
	raceID string
	sortBy Sort
	rows   []Row
	shown  []int
}

// New creates a console with no race loaded. Call Load before use.
func New(cfg Config) *Console {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = feed.DefaultStaleAfter
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = groups.DefaultKeyPrefix
	}

	return &Console{
		logger:     cfg.Logger,
		clock:      cfg.Clock,
		staleAfter: cfg.StaleAfter,
		selector: schedule.NewSelector(schedule.SelectorConfig{
			Store: cfg.Store, Logger: cfg.Logger, KeyPrefix: cfg.KeyPrefix,
		}),
		registry: groups.NewRegistry(groups.Config{
			Store: cfg.Store, Logger: cfg.Logger, KeyPrefix: cfg.KeyPrefix,
		}),
		ledger: checked.NewLedger(checked.Config{
			Store: cfg.Store, Clock: cfg.Clock, Logger: cfg.Logger, KeyPrefix: cfg.KeyPrefix + "-checked",
		}),
		nav:     focus.NewNavigator(focus.Options{WrapAround: cfg.WrapAround}),
		notices: NewNotifier(cfg.Clock, cfg.MaxNotices),
		snap:    feed.Snapshot{State: feed.StateDisconnected},
		sortBy:  SortStartOrder,
	}
}

// Load restores the persisted race selection.
func (c *Console) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selector.Load(ctx)
	c.logger.Debug("console loaded", "selected_race", c.selector.Selected())
}

// ApplySnapshot takes a new feed snapshot. It auto-selects the running race
// when nothing is selected and reloads race-scoped state on a race change.
func (c *Console) ApplySnapshot(ctx context.Context, snap feed.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = snap
	c.proj = schedule.Project(snap.Schedule)

	wasSelected := c.selector.Selected()
	if race, ok := c.selector.Resolve(ctx, c.proj); ok && wasSelected == "" {
		c.notices.Show(NoticeSuccess, "Following running race "+race.ShortTitle)
	}
	if id := c.selector.Selected(); id != c.raceID {
		c.switchRace(ctx, id)
		return
	}
	c.rebuild()
}

// Status returns the feed connection indicator.
func (c *Console) Status() feed.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Status(c.clock.Now(), c.staleAfter)
}

// RaceList is the race selector content.
type RaceList struct {
	Races      []schedule.ProcessedRace `json:"races"`
	SelectedID string                   `json:"selectedId,omitempty"`
	RunningID  string                   `json:"runningId,omitempty"`
}

// Races returns the active races of the last schedule.
func (c *Console) Races() RaceList {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := RaceList{
		Races:      slices.Clone(c.proj.Active),
		SelectedID: c.selector.Selected(),
	}
	if c.proj.Running != nil {
		out.RunningID = c.proj.Running.RaceID
	}
	return out
}

// SelectRace switches to an active race of the last schedule.
func (c *Console) SelectRace(ctx context.Context, raceID string) (schedule.ProcessedRace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	race, ok := c.proj.Lookup(raceID)
	if !ok {
		return schedule.ProcessedRace{}, fmt.Errorf("%w: %s", ErrRaceNotFound, raceID)
	}
	c.selector.Select(ctx, raceID)
	if raceID != c.raceID {
		c.switchRace(ctx, raceID)
	}
	return race, nil
}

// switchRace loads the ledger and groups of raceID and resets the cursor.
func (c *Console) switchRace(ctx context.Context, raceID string) {
	c.logger.Info("switching race", "from", c.raceID, "to", raceID)
	c.raceID = raceID
	c.ledger.Load(ctx, raceID)
	c.registry.Load(ctx, raceID, c.totalGates())
	c.ledger.SetGroup(c.registry.ActiveID())
	c.rebuild()
	c.nav.SetPosition(focus.Position{})
}

// totalGates is the gate count of the selected race: the configured count,
// else the longest decoded gate string.
func (c *Console) totalGates() int {
	if cfg, ok := c.snap.Config(c.raceID); ok {
		if n := max(len(cfg.GateConfig), cfg.NrGates); n > 0 {
			return n
		}
	}
	longest := 0
	for _, r := range c.snap.Results[c.raceID].Rows {
		longest = max(longest, len(gates.Parse(r.Gates)))
	}
	for _, oc := range c.snap.OnCourseFor(c.raceID) {
		longest = max(longest, len(gates.Parse(oc.Gates)))
	}
	return longest
}

// rebuild recomputes the grid and the cursor bounds from current inputs.
func (c *Console) rebuild() {
	if c.raceID == "" {
		c.rows = nil
		c.shown = nil
		c.nav.SetBounds(0, 0)
		return
	}

	c.registry.SetTotalGates(c.totalGates())
	c.shown = c.registry.VisibleGates()
	rows := buildRows(c.snap, c.raceID)
	sortRows(rows, c.sortBy)
	for i := range rows {
		rows[i].Gates = visible(rows[i].all, c.shown)
		rows[i].Checked = c.ledger.IsChecked(rows[i].Bib)
		rows[i].CheckedAt = c.ledger.CheckedAt(rows[i].Bib)
	}
	c.rows = rows
	c.nav.SetBounds(len(rows), len(c.shown))
}

// Grid returns the scoring grid of the selected race.
func (c *Console) Grid() Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]Row, len(c.rows))
	for i, r := range c.rows {
		r.Gates = slices.Clone(r.Gates)
		r.all = nil
		rows[i] = r
	}
	return Grid{RaceID: c.raceID, Sort: c.sortBy, Gates: slices.Clone(c.shown), Rows: rows}
}

// SetSort reorders the grid. The cursor stays on the same cell index.
func (c *Console) SetSort(by Sort) error {
	if _, err := ParseSort(string(by)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortBy = by
	c.rebuild()
	return nil
}

func (c *Console) bibs() []string {
	out := make([]string, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.Bib
	}
	return out
}

// Progress counts checked competitors of the grid in the active group.
func (c *Console) Progress() checked.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Progress(c.bibs())
}

func (c *Console) requireRace() error {
	if c.raceID == "" {
		return ErrNoRace
	}
	return nil
}

// ToggleChecked flips the checked state of bib and returns the new state.
func (c *Console) ToggleChecked(ctx context.Context, bib string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return false, err
	}
	state := c.ledger.ToggleChecked(ctx, bib)
	c.rebuild()
	return state, nil
}

// SetChecked sets the checked state of bib.
func (c *Console) SetChecked(ctx context.Context, bib string, state bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return err
	}
	c.ledger.SetChecked(ctx, bib, state)
	c.rebuild()
	return nil
}

// CheckAll marks every competitor of the grid checked.
func (c *Console) CheckAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return err
	}
	c.ledger.CheckMultiple(ctx, c.bibs())
	c.rebuild()
	return nil
}

// UncheckAll marks every competitor of the grid unchecked.
func (c *Console) UncheckAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return err
	}
	c.ledger.UncheckMultiple(ctx, c.bibs())
	c.rebuild()
	return nil
}

// ClearChecked drops the checks of the active group, or of the whole race
// when all gates are shown.
func (c *Console) ClearChecked(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return err
	}
	c.ledger.ClearChecked(ctx)
	c.rebuild()
	return nil
}

// GroupList is the group toolbar content.
type GroupList struct {
	Groups           []groups.Group `json:"groups"`
	ActiveID         string         `json:"activeId"`
	ShortcutsEnabled bool           `json:"shortcutsEnabled"`
}

// Groups returns the gate groups of the selected race.
func (c *Console) Groups() GroupList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GroupList{
		Groups:           c.registry.Groups(),
		ActiveID:         c.registry.ActiveID(),
		ShortcutsEnabled: c.registry.ShortcutsEnabled(),
	}
}

// CreateGroup adds a gate group to the selected race.
func (c *Console) CreateGroup(ctx context.Context, g groups.Group) (groups.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return groups.Group{}, err
	}
	return c.registry.Add(ctx, g)
}

// UpdateGroup replaces a gate group of the selected race.
func (c *Console) UpdateGroup(ctx context.Context, g groups.Group) (groups.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return groups.Group{}, err
	}
	updated, err := c.registry.Update(ctx, g)
	if err != nil {
		return groups.Group{}, err
	}
	c.syncGroup()
	return updated, nil
}

// DeleteGroup removes a gate group of the selected race.
func (c *Console) DeleteGroup(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRace(); err != nil {
		return err
	}
	if err := c.registry.Remove(ctx, id); err != nil {
		return err
	}
	c.syncGroup()
	return nil
}

// SetActiveGroup switches the gate filter. Unknown ids leave it unchanged and
// return false.
func (c *Console) SetActiveGroup(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.registry.SetActive(ctx, id) {
		return false
	}
	c.syncGroup()
	return true
}

// SetShortcutsEnabled turns the digit group shortcuts on or off.
func (c *Console) SetShortcutsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.SetShortcutsEnabled(enabled)
}

// syncGroup scopes the ledger to the active group and rebuilds the grid.
func (c *Console) syncGroup() {
	c.ledger.SetGroup(c.registry.ActiveID())
	c.rebuild()
}

// FocusState is the keyboard cursor and the cell under it.
type FocusState struct {
	Focused bool           `json:"focused"`
	Row     int            `json:"row"`
	Column  int            `json:"column"`
	CellID  string         `json:"cellId,omitempty"`
	Bib     string         `json:"bib,omitempty"`
	Gate    int            `json:"gate,omitempty"`
	Penalty *gates.Penalty `json:"penalty,omitempty"`
}

// Focus returns the cursor state.
func (c *Console) Focus() FocusState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusState()
}

func (c *Console) focusState() FocusState {
	p, ok := c.nav.Position()
	if !ok || p.Row >= len(c.rows) || p.Column >= len(c.shown) {
		return FocusState{}
	}
	rec := c.rows[p.Row].Gates[p.Column]
	return FocusState{
		Focused: true,
		Row:     p.Row,
		Column:  p.Column,
		CellID:  c.nav.ActiveCellID(),
		Bib:     c.rows[p.Row].Bib,
		Gate:    rec.Number,
		Penalty: &rec.Penalty,
	}
}

// SetFocus moves the cursor to a cell, clamped into the grid.
func (c *Console) SetFocus(row, column int) FocusState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav.SetPosition(focus.Position{Row: row, Column: column})
	return c.focusState()
}

// HandleKey feeds one key press to the group shortcuts, then to the grid
// cursor. It returns whether the key was consumed.
func (c *Console) HandleKey(ctx context.Context, ev keyboard.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registry.HandleKey(ctx, ev) {
		c.syncGroup()
		return true
	}
	return c.nav.HandleKey(ev)
}

// ScoreFocused builds the scoring request for the focused cell. A nil value
// deletes the penalty.
func (c *Console) ScoreFocused(value *int) (scoring.PenaltyRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := scoring.ParseValue(value)
	if err != nil {
		c.notices.Show(NoticeError, err.Error())
		return scoring.PenaltyRequest{}, err
	}
	fs := c.focusState()
	if !fs.Focused {
		return scoring.PenaltyRequest{}, ErrNoFocus
	}
	req, err := scoring.NewPenaltyRequest(c.raceID, fs.Bib, fs.Gate, p)
	if err != nil {
		return scoring.PenaltyRequest{}, err
	}
	c.notices.Show(NoticeSuccess, fmt.Sprintf("Bib %s gate %d: %s", fs.Bib, fs.Gate, p))
	return req, nil
}

// Notices returns the queued notices.
func (c *Console) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notices.List()
}

// DismissNotice removes a notice.
func (c *Console) DismissNotice(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notices.Dismiss(id)
}

// KeyBindings returns the navigation and group shortcut bindings.
func (c *Console) KeyBindings() (navigation, groupShortcuts []KeyHelp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.nav.KeyBindings() {
		navigation = append(navigation, KeyHelp{Key: b.Help().Key, Description: b.Help().Desc})
	}
	for _, b := range c.registry.Shortcuts() {
		groupShortcuts = append(groupShortcuts, KeyHelp{Key: b.Help().Key, Description: b.Help().Desc})
	}
	return navigation, groupShortcuts
}

// KeyHelp describes one key binding.
type KeyHelp struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}
