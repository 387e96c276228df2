package scoring

import "errors"

// ErrInvalidInput indicates a request that the timing server would reject.
var ErrInvalidInput = errors.New("invalid scoring input")
