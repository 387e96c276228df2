package console

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/opencanoetiming/c123-scoring/internal/domain/timing"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
)

// Sort orders the grid rows.
type Sort string

const (
	SortStartOrder Sort = "startOrder"
	SortRank       Sort = "rank"
	SortBib        Sort = "bib"
)

// Label returns the toolbar label of the sort.
func (s Sort) Label() string {
	switch s {
	case SortRank:
		return "Results"
	case SortBib:
		return "Bib Number"
	default:
		return "Start Order"
	}
}

// ParseSort validates a sort name.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(s); v {
	case SortStartOrder, SortRank, SortBib:
		return v, nil
	}
	return "", fmt.Errorf("%w: sort %q", ErrInvalidInput, s)
}

// Row is one competitor of the scoring grid.
type Row struct {
	Bib          string              `json:"bib"`
	Name         string              `json:"name"`
	Club         string              `json:"club,omitempty"`
	StartOrder   int                 `json:"startOrder,omitempty"`
	Rank         int                 `json:"rank,omitempty"`
	Time         string              `json:"time,omitempty"`
	OnCourse     bool                `json:"onCourse"`
	Gates        []gates.GateRecord  `json:"gates"`
	TotalPenalty int                 `json:"totalPenalty"`
	Checked      bool                `json:"checked"`
	CheckedAt    *time.Time          `json:"checkedAt"`
	all          []gates.GateRecord
}

// Grid is the scoring table of the selected race, filtered to the active
// gate group.
type Grid struct {
	RaceID string `json:"raceId"`
	Sort   Sort   `json:"sort"`
	Gates  []int  `json:"gates"`
	Rows   []Row  `json:"rows"`
}

// gateConfig returns the per-gate type string of a race. Without a
// configuration every decoded gate is treated as normal.
func gateConfig(cfg feed.RaceConfig, ok bool, decoded int) string {
	if ok && cfg.GateConfig != "" {
		return cfg.GateConfig
	}
	if ok && cfg.NrGates > 0 {
		return strings.Repeat("N", cfg.NrGates)
	}
	return strings.Repeat("N", decoded)
}

// buildRows merges the result list and the on-course list of raceID. Live
// on-course data wins for competitors present in both.
func buildRows(snap feed.Snapshot, raceID string) []Row {
	cfg, hasCfg := snap.Config(raceID)
	index := make(map[string]int)
	var rows []Row

	records := func(raw string) []gates.GateRecord {
		config := gateConfig(cfg, hasCfg, len(gates.Parse(raw)))
		recs, err := gates.BuildGateRecords(raw, config)
		if err != nil {
			// malformed configuration: show the decoded values as normal gates
			recs, _ = gates.BuildGateRecords(raw, strings.Repeat("N", len(config)))
		}
		return recs
	}

	for _, r := range snap.Results[raceID].Rows {
		if _, dup := index[r.Bib]; dup || r.Bib == "" {
			continue
		}
		index[r.Bib] = len(rows)
		rows = append(rows, Row{
			Bib:        r.Bib,
			Name:       r.Name,
			Club:       r.Club,
			StartOrder: r.StartOrder,
			Rank:       r.Rank,
			Time:       timing.FormatSeconds(r.Time),
			all:        records(r.Gates),
		})
	}

	for _, c := range snap.OnCourseFor(raceID) {
		if c.Bib == "" {
			continue
		}
		i, ok := index[c.Bib]
		if !ok {
			index[c.Bib] = len(rows)
			rows = append(rows, Row{Bib: c.Bib, Name: c.Name, Club: c.Club})
			i = len(rows) - 1
		}
		rows[i].OnCourse = !c.Completed
		rows[i].all = records(c.Gates)
		if c.Time != "" {
			rows[i].Time = timing.FormatSeconds(c.Time)
		}
	}

	for i := range rows {
		rows[i].TotalPenalty = gates.TotalPenalty(rows[i].all)
	}
	return rows
}

func sortRows(rows []Row, by Sort) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		switch by {
		case SortRank:
			if c := compareRanked(a.Rank, b.Rank); c != 0 {
				return c
			}
			return compareRanked(a.StartOrder, b.StartOrder)
		case SortBib:
			return compareBibs(a.Bib, b.Bib)
		default:
			if c := compareRanked(a.StartOrder, b.StartOrder); c != 0 {
				return c
			}
			return compareBibs(a.Bib, b.Bib)
		}
	})
}

// compareRanked orders positive values ascending with zero (unknown) last.
func compareRanked(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	}
	return cmp.Compare(a, b)
}

// compareBibs orders numeric bibs numerically and others lexically after them.
func compareBibs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// visible keeps the gate records whose numbers are in show.
func visible(all []gates.GateRecord, show []int) []gates.GateRecord {
	out := make([]gates.GateRecord, 0, len(show))
	for _, n := range show {
		if n >= 1 && n <= len(all) {
			out = append(out, all[n-1])
		} else {
			out = append(out, gates.GateRecord{Number: n, Type: gates.GateNormal})
		}
	}
	return out
}
