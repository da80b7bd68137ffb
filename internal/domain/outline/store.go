package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/deckline/internal/repository"
)

// Store holds the current prompt and the ordered outline cards. Every mutation
// is visible immediately and then written through to the SnapshotStore as a
// whole snapshot.
type Store struct {
	persist SnapshotStore
	logger  *slog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int

	// notifyMu is taken before mu is released so subscribers see commits in
	// order.
	notifyMu sync.Mutex
}

// NewStore creates a store seeded from the last persisted snapshot.
func NewStore(ctx context.Context, persist SnapshotStore, logger *slog.Logger) (*Store, error) {
	s := &Store{
		persist: persist,
		logger:  logger,
		subs:    make(map[int]func(Snapshot)),
	}
	if persist == nil {
		return s, nil
	}

	snap, err := persist.Load(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading outline snapshot: %w", err)
	}
	if err == nil {
		s.snap = snap.Clone()
	}
	return s, nil
}

// SetPrompt replaces the current prompt text.
func (s *Store) SetPrompt(ctx context.Context, text string) error {
	return s.mutate(ctx, func(snap *Snapshot) error {
		snap.CurrentPrompt = text
		return nil
	})
}

// AddOutline puts card at the front of the list.
func (s *Store) AddOutline(ctx context.Context, card OutlineCard) error {
	return s.mutate(ctx, func(snap *Snapshot) error {
		snap.Outlines = append([]OutlineCard{card}, snap.Outlines...)
		return nil
	})
}

// ReplaceAll replaces the outline list verbatim.
func (s *Store) ReplaceAll(ctx context.Context, cards []OutlineCard) error {
	next := make([]OutlineCard, len(cards))
	copy(next, cards)
	return s.mutate(ctx, func(snap *Snapshot) error {
		snap.Outlines = next
		return nil
	})
}

// Update replaces the outline list with fn's result, computed from the
// current list under the write lock. An error from fn leaves the store as it
// was and is returned unwrapped.
func (s *Store) Update(ctx context.Context, fn func(cards []OutlineCard) ([]OutlineCard, error)) error {
	return s.mutate(ctx, func(snap *Snapshot) error {
		cur := make([]OutlineCard, len(snap.Outlines))
		copy(cur, snap.Outlines)
		next, err := fn(cur)
		if err != nil {
			return err
		}
		snap.Outlines = next
		return nil
	})
}

// Reset clears the prompt and the outline list.
func (s *Store) Reset(ctx context.Context) error {
	return s.mutate(ctx, func(snap *Snapshot) error {
		snap.CurrentPrompt = ""
		snap.Outlines = []OutlineCard{}
		return nil
	})
}

// ReplaceSnapshot sets the prompt and the outline list in one write.
func (s *Store) ReplaceSnapshot(ctx context.Context, snap Snapshot) error {
	next := snap.Clone()
	return s.mutate(ctx, func(cur *Snapshot) error {
		*cur = next
		return nil
	})
}

// Outlines returns a copy of the outline list.
func (s *Store) Outlines() []OutlineCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OutlineCard, len(s.snap.Outlines))
	copy(out, s.snap.Outlines)
	return out
}

// Items returns the outline list so the store can back an ordered-list editor.
func (s *Store) Items() []OutlineCard {
	return s.Outlines()
}

// Prompt returns the current prompt text.
func (s *Store) Prompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CurrentPrompt
}

// Snapshot returns a copy of the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Subscribe registers fn to receive every snapshot committed after the
// returned one, in commit order. fn runs on the committing goroutine and must
// not mutate the store. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (Snapshot, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.snap.Clone()
	s.mu.Unlock()

	return current, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// mutate applies fn under the write lock, persists the resulting snapshot and
// notifies subscribers. The in-memory state keeps the change even when the
// write-through fails.
func (s *Store) mutate(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	next := s.snap.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if next.Outlines == nil {
		next.Outlines = []OutlineCard{}
	}
	s.snap = next
	snap := s.snap.Clone()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}

	var persistErr error
	if s.persist != nil {
		// Saving under the lock keeps snapshots ordered with mutations.
		persistErr = s.persist.Save(ctx, snap)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap.Clone())
	}
	s.notifyMu.Unlock()

	if persistErr != nil {
		if s.logger != nil {
			s.logger.Warn("outline snapshot not persisted", "error", persistErr)
		}
		return fmt.Errorf("%w: %w", ErrPersist, persistErr)
	}
	return nil
}
