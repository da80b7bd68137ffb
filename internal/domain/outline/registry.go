package outline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry hands out one Store per tenant, each persisted under its own key.
type Registry struct {
	factory   SnapshotStoreFactory
	namespace string
	logger    *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a registry whose stores persist under namespace/<tenant>.
func NewRegistry(factory SnapshotStoreFactory, namespace string, logger *slog.Logger) *Registry {
	return &Registry{
		factory:   factory,
		namespace: namespace,
		logger:    logger,
		stores:    make(map[string]*Store),
	}
}

// Store returns the tenant's store, loading it on first use.
func (r *Registry) Store(ctx context.Context, tenantID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[tenantID]; ok {
		return s, nil
	}

	key := SnapshotKey(r.namespace, tenantID)
	var persist SnapshotStore
	if r.factory != nil {
		persist = r.factory.ForKey(key)
	}
	logger := r.logger
	if logger != nil {
		logger = logger.With("snapshot_key", key)
	}
	s, err := NewStore(ctx, persist, logger)
	if err != nil {
		return nil, err
	}
	r.stores[tenantID] = s
	return s, nil
}

// Tenants lists tenants with a stored outline. Factories that cannot list
// keys fall back to the tenants loaded by this registry.
func (r *Registry) Tenants(ctx context.Context) ([]string, error) {
	prefix := SnapshotKey(r.namespace, "") + "/"
	if lister, ok := r.factory.(SnapshotKeyLister); ok {
		keys, err := lister.Keys(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("listing outline snapshots: %w", err)
		}
		tenants := make([]string, 0, len(keys))
		for _, key := range keys {
			if tenant := strings.TrimPrefix(key, prefix); tenant != "" && tenant != key {
				tenants = append(tenants, tenant)
			}
		}
		return tenants, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tenants := make([]string, 0, len(r.stores))
	for tenant := range r.stores {
		if tenant != "" {
			tenants = append(tenants, tenant)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}
