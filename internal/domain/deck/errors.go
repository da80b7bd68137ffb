package deck

import "errors"

// ErrSessionClosed is returned when a closed session is modified.
var ErrSessionClosed = errors.New("deck session closed")
