package activity

import "context"

// Repository stores activity entries per tenant.
type Repository interface {
	Log(ctx context.Context, tenantID string, entry *ActivityEntry) error
	// List returns entries newest first.
	List(ctx context.Context, tenantID string, opts ListActivityOptions) ([]ActivityEntry, error)
}

// ListActivityOptions filters a List call. Zero values match everything;
// a zero Limit means no limit at the repository and DefaultLimit at the
// service.
type ListActivityOptions struct {
	ProjectID    string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
