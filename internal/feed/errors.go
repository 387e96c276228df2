package feed

import "errors"

var (
	// ErrMalformedMessage indicates a frame that isn't a valid envelope.
	ErrMalformedMessage = errors.New("malformed feed message")
	// ErrUnknownType indicates an envelope type the console doesn't consume.
	ErrUnknownType = errors.New("unknown feed message type")
)
