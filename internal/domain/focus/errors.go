package focus

import "errors"

// ErrInvalidDirection indicates an unknown move direction.
var ErrInvalidDirection = errors.New("invalid direction")
