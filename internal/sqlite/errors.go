package sqlite

import (
	"fmt"
	"strings"

	"github.com/rpggio/deckline/internal/repository"
)

// writeError wraps a failed insert, mapping primary key and unique index
// collisions to repository.ErrConflict.
func writeError(err error, action string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", action, repository.ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
