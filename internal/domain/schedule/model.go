package schedule

// Status is the race state published by the timing server.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusRunning    Status = "running"
	StatusUnofficial Status = "unofficial"
	StatusOfficial   Status = "official"
	StatusCancelled  Status = "cancelled"
)

// IsActive reports whether the race belongs in the race selector.
// Cancelled and unknown states are not active.
func (s Status) IsActive() bool {
	switch s {
	case StatusScheduled, StatusRunning, StatusUnofficial, StatusOfficial:
		return true
	}
	return false
}

// IsRunning reports whether competitors are on course.
func (s Status) IsRunning() bool {
	return s == StatusRunning
}

// IsFinished reports whether the race has results.
func (s Status) IsFinished() bool {
	return s == StatusUnofficial || s == StatusOfficial
}

// Race is one schedule entry as delivered by the feed.
type Race struct {
	RaceID     string `json:"raceId"`
	ShortTitle string `json:"shortTitle"`
	MainTitle  string `json:"mainTitle,omitempty"`
	Status     Status `json:"raceStatus"`
	StartTime  string `json:"startTime,omitempty"`
}

// Schedule is a whole schedule snapshot.
type Schedule struct {
	Races []Race `json:"races"`
}

// ProcessedRace is a race as shown by the selector.
type ProcessedRace struct {
	RaceID     string `json:"raceId"`
	ShortTitle string `json:"shortTitle"`
	MainTitle  string `json:"mainTitle,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	Status     Status `json:"status"`
	IsRunning  bool   `json:"isRunning"`
	IsFinished bool   `json:"isFinished"`
}
