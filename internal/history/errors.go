package history

import "errors"

// ErrNotFound is returned when no record exists for the requested job ID.
var ErrNotFound = errors.New("job record not found")
