package console

import "errors"

var (
	// ErrNoRace indicates an operation that needs a selected race.
	ErrNoRace = errors.New("no race selected")
	// ErrRaceNotFound indicates a race id missing from the active schedule.
	ErrRaceNotFound = errors.New("race not found")
	// ErrNoFocus indicates the grid has no focused cell.
	ErrNoFocus = errors.New("no focused cell")
	// ErrInvalidInput indicates invalid console input.
	ErrInvalidInput = errors.New("invalid input")
)
