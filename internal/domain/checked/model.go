package checked

import (
	"math"
	"time"
)

// AllGatesKey is the key segment used for the unfiltered "all gates" scope.
const AllGatesKey = "all"

// Entry is the verification state of one competitor within one gate group.
type Entry struct {
	Bib       string     `json:"bib"`
	GroupID   *string    `json:"groupId"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checkedAt"`
}

// Key composes the ledger key for a bib within a group scope. A nil group is
// the "all gates" scope.
func Key(bib string, groupID *string) string {
	if groupID == nil {
		return bib + ":" + AllGatesKey
	}
	return bib + ":" + *groupID
}

// Progress summarises how many competitors have been checked.
type Progress struct {
	Checked    int `json:"checked"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewProgress computes a rounded percentage; zero total yields 0%.
func NewProgress(checked, total int) Progress {
	if total == 0 {
		return Progress{}
	}
	return Progress{
		Checked:    checked,
		Total:      total,
		Percentage: int(math.Round(float64(checked) / float64(total) * 100)),
	}
}

// Visible reports whether a progress indicator should be shown at all.
func (p Progress) Visible() bool {
	return p.Total > 0
}

// Complete reports whether every competitor has been checked.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Checked == p.Total
}
