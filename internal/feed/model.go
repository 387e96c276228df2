package feed

import (
	"maps"
	"slices"
	"time"

	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
)

// Message types sent by the timing server.
const (
	TypeSchedule   = "Schedule"
	TypeOnCourse   = "OnCourse"
	TypeResults    = "Results"
	TypeRaceConfig = "RaceConfig"
)

// State is the connection state of the feed.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Competitor is a competitor currently on course.
type Competitor struct {
	Bib       string `json:"bib"`
	Name      string `json:"name"`
	Club      string `json:"club,omitempty"`
	RaceID    string `json:"raceId"`
	Gates     string `json:"gates"`
	Time      string `json:"time,omitempty"`
	Completed bool   `json:"completed"`
}

// OnCourse is the list of competitors between start and finish.
type OnCourse struct {
	Competitors []Competitor `json:"competitors"`
}

// ResultRow is one competitor of a race result list.
type ResultRow struct {
	Bib        string `json:"bib"`
	Name       string `json:"name"`
	Club       string `json:"club,omitempty"`
	StartOrder int    `json:"startOrder"`
	Rank       int    `json:"rank,omitempty"`
	Time       string `json:"time,omitempty"`
	Gates      string `json:"gates"`
	Pen        int    `json:"pen,omitempty"`
	Total      string `json:"total,omitempty"`
}

// Results is the result list of one race.
type Results struct {
	RaceID string      `json:"raceId"`
	Rows   []ResultRow `json:"rows"`
}

// RaceConfig describes the gates of a race. An empty RaceID applies to
// every race without its own configuration.
type RaceConfig struct {
	RaceID     string `json:"raceId,omitempty"`
	NrGates    int    `json:"nrGates"`
	GateConfig string `json:"gateConfig"`
}

// Snapshot is everything the feed has delivered so far plus the connection
// state. Snapshots handed out by the client are copies.
type Snapshot struct {
	State       State
	LastMessage time.Time
	LastError   string
	Schedule    schedule.Schedule
	OnCourse    []Competitor
	Results     map[string]Results
	Configs     map[string]RaceConfig
}

// Config returns the gate configuration of raceID, falling back to the
// race-less configuration.
func (s Snapshot) Config(raceID string) (RaceConfig, bool) {
	if c, ok := s.Configs[raceID]; ok {
		return c, true
	}
	c, ok := s.Configs[""]
	return c, ok
}

// OnCourseFor returns the on-course competitors of raceID.
func (s Snapshot) OnCourseFor(raceID string) []Competitor {
	var out []Competitor
	for _, c := range s.OnCourse {
		if c.RaceID == raceID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Schedule.Races = slices.Clone(s.Schedule.Races)
	out.OnCourse = slices.Clone(s.OnCourse)
	out.Results = make(map[string]Results, len(s.Results))
	for id, r := range s.Results {
		r.Rows = slices.Clone(r.Rows)
		out.Results[id] = r
	}
	out.Configs = maps.Clone(s.Configs)
	if out.Configs == nil {
		out.Configs = map[string]RaceConfig{}
	}
	return out
}
