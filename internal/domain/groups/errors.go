package groups

import "errors"

var (
	// ErrGroupNotFound indicates the group doesn't exist in the race collection.
	ErrGroupNotFound = errors.New("gate group not found")
	// ErrDuplicateGroup indicates a group id already used in the race collection.
	ErrDuplicateGroup = errors.New("gate group already exists")
	// ErrReservedID indicates an attempt to create or modify the all-gates group.
	ErrReservedID = errors.New("gate group id is reserved")
	// ErrInvalidInput indicates invalid group input.
	ErrInvalidInput = errors.New("invalid gate group input")
)
