package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultLimit bounds GetRecentActivity when no limit is given.
const DefaultLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, tenantID string, entry *ActivityEntry) error {
	if entry == nil || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.TenantID = tenantID
	if err := s.repo.Log(ctx, tenantID, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Log satisfies the activity logger ports of the other domain services.
func (s *Service) Log(ctx context.Context, tenantID string, entry *ActivityEntry) error {
	return s.LogActivity(ctx, tenantID, entry)
}

// Record logs an entry and only reports failures to the logger. Activity is
// secondary to the state change that produced it.
func (s *Service) Record(ctx context.Context, tenantID string, entry ActivityEntry) {
	if s == nil {
		return
	}
	if err := s.LogActivity(ctx, tenantID, &entry); err != nil && s.logger != nil {
		s.logger.Warn("activity not recorded", "type", entry.ActivityType, "error", err)
	}
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, tenantID string, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	entries, err := s.repo.List(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
