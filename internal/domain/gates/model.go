package gates

import "strconv"

// Value is a single decoded gate field: an integer or absent.
type Value struct {
	N       int
	Present bool
}

// Absent is the value of an empty or unreadable gate field.
var Absent = Value{}

// Some wraps n as a present value.
func Some(n int) Value {
	return Value{N: n, Present: true}
}

func (v Value) String() string {
	if !v.Present {
		return ""
	}
	return strconv.Itoa(v.N)
}

// Penalty is the judged state of one gate.
type Penalty uint8

const (
	// PenaltyNone means not yet judged, or a deleted penalty.
	PenaltyNone Penalty = iota
	PenaltyClean
	PenaltyTouch
	PenaltyMissed
)

// Seconds returns the time added by the penalty. PenaltyNone counts as 0.
func (p Penalty) Seconds() int {
	switch p {
	case PenaltyTouch:
		return 2
	case PenaltyMissed:
		return 50
	default:
		return 0
	}
}

// Judged reports whether a judge has set a value for the gate.
func (p Penalty) Judged() bool {
	return p != PenaltyNone
}

// Value converts the penalty back to its wire value.
func (p Penalty) Value() Value {
	if p == PenaltyNone {
		return Absent
	}
	return Some(p.Seconds())
}

// MarshalJSON encodes the penalty as its wire value, null when not judged.
func (p Penalty) MarshalJSON() ([]byte, error) {
	if p == PenaltyNone {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.Seconds())), nil
}

// UnmarshalJSON accepts null, 0, 2 or 50.
func (p *Penalty) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PenaltyNone
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidPenalty
	}
	parsed, err := ParsePenalty(n)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Penalty) String() string {
	switch p {
	case PenaltyClean:
		return "clean"
	case PenaltyTouch:
		return "touch"
	case PenaltyMissed:
		return "missed"
	default:
		return "none"
	}
}

// GateType is the direction a gate is negotiated in.
type GateType string

const (
	GateNormal  GateType = "Normal"
	GateReverse GateType = "Reverse"
)

// GateRecord is one gate of one competitor's run.
type GateRecord struct {
	Number  int      `json:"number"`
	Type    GateType `json:"type"`
	Penalty Penalty  `json:"penalty"`
}
