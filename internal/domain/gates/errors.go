package gates

import "errors"

var (
	// ErrInvalidPenalty indicates a manually entered value outside {0, 2, 50}.
	ErrInvalidPenalty = errors.New("invalid penalty value")
	// ErrInvalidGateType indicates a gate configuration character other than N or R.
	ErrInvalidGateType = errors.New("invalid gate type")
)
