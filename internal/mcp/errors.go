package mcp

import (
	"errors"
	"fmt"

	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/opencanoetiming/c123-scoring/internal/domain/focus"
	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/opencanoetiming/c123-scoring/internal/domain/groups"
	"github.com/opencanoetiming/c123-scoring/internal/domain/scoring"
)

// APIError is the error reported by a failed tool call.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to tool error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	api := func(code, hint string) *APIError {
		return &APIError{Code: code, Message: err.Error(), RecoveryHint: hint, cause: err}
	}
	switch {
	case errors.Is(err, console.ErrNoRace):
		return api("NO_RACE", "Call list_races and select_race first")
	case errors.Is(err, console.ErrRaceNotFound):
		return api("RACE_NOT_FOUND", "Call list_races for active race ids")
	case errors.Is(err, console.ErrNoFocus):
		return api("NO_FOCUS", "The grid is empty; wait for results or select another race")
	case errors.Is(err, groups.ErrGroupNotFound):
		return api("GROUP_NOT_FOUND", "Call list_groups for group ids")
	case errors.Is(err, groups.ErrDuplicateGroup):
		return api("DUPLICATE_GROUP", "Omit id to generate one")
	case errors.Is(err, groups.ErrReservedID):
		return api("RESERVED_GROUP", `The "all" group cannot be changed`)
	case errors.Is(err, gates.ErrInvalidPenalty):
		return api("INVALID_PENALTY", "Use 0, 2, 50 or null")
	case errors.Is(err, gates.ErrInvalidGateType):
		return api("INVALID_GATE_CONFIG", "Use N and R characters only")
	case errors.Is(err, groups.ErrInvalidInput),
		errors.Is(err, console.ErrInvalidInput),
		errors.Is(err, scoring.ErrInvalidInput),
		errors.Is(err, focus.ErrInvalidDirection):
		return api("INVALID_INPUT", "")
	default:
		return nil
	}
}

// toolError converts err for a tool result.
func toolError(err error) error {
	if api := MapError(err); api != nil {
		return api
	}
	return err
}
