package checked

import "errors"

var (
	// ErrSchemaMismatch indicates a persisted ledger written with another schema version.
	ErrSchemaMismatch = errors.New("checked ledger schema mismatch")
	// ErrCorrupt indicates a persisted ledger that could not be decoded.
	ErrCorrupt = errors.New("checked ledger corrupt")
)
