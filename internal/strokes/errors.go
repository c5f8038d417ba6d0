package strokes

import "errors"

// ErrMalformed is wrapped into every decode error from Decode, letting
// callers distinguish a corrupt .lines file from an I/O failure fetching
// it in the first place.
var ErrMalformed = errors.New("malformed .lines data")
