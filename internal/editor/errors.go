package editor

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any NotFoundError.
var ErrNotFound = errors.New("item not found")

// NotFoundError reports an operation that referenced a missing item. It is
// only returned by editors built WithStrict.
type NotFoundError struct {
	Op string
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: item %q not found", e.Op, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
