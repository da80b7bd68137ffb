package outline

import "errors"

var (
	// ErrPersist indicates the snapshot could not be written.
	ErrPersist = errors.New("persisting outline snapshot")
	// ErrInvalidCard indicates a card supplied by a caller is malformed.
	ErrInvalidCard = errors.New("invalid outline card")
)
