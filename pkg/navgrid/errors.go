package navgrid

import "errors"

// Grid errors. All of them describe caller mistakes; none are retryable.
var (
	ErrOutOfBounds     = errors.New("position is outside the map extent")
	ErrIndexOutOfRange = errors.New("node index is out of range")
	ErrInvalidConfig   = errors.New("invalid grid config")
)
