// Package editor is the drag/insert/delete/edit controller for ordered lists
// of outline cards or slides. It owns transient gesture and edit state and
// commits every change through the backing list's Update.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/deckline/internal/ordering"
)

// Entry is an ordered item with an editable title.
type Entry[T any] interface {
	ordering.Item[T]
	ItemTitle() string
	SetTitle(title string)
}

// List is the state container an Editor commits into. Update applies fn to
// the current items and stores the result atomically; an error from fn leaves
// the list untouched and is returned as is.
type List[T any] interface {
	Items() []T
	Update(ctx context.Context, fn func(items []T) ([]T, error)) error
}

// errUnchanged aborts an Update whose result equals its input.
var errUnchanged = errors.New("unchanged")

// State is a copy of the editor's transient state.
type State struct {
	DraggingID string
	HoverIndex int
	SelectedID string
	EditingID  string
	EditText   string
}

// Editor manages drag reordering and item edits over a List.
type Editor[T any, P Entry[T]] struct {
	list    List[T]
	newItem func(id, title string) T
	strict  bool
	newID   func() string
	logger  *slog.Logger

	mu         sync.Mutex
	draggingID string
	hoverIndex int
	selectedID string
	editingID  string
	editText   string
}

// New creates an editor over list. newItem builds inserted items.
func New[T any, P Entry[T]](list List[T], newItem func(id, title string) T, opts ...Option) *Editor[T, P] {
	o := buildOptions(opts)
	return &Editor[T, P]{
		list:       list,
		newItem:    newItem,
		strict:     o.strict,
		newID:      o.newID,
		logger:     o.logger,
		hoverIndex: -1,
	}
}

// DragStart remembers the dragged item by identity.
func (e *Editor[T, P]) DragStart(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draggingID = id
	e.hoverIndex = -1
}

// DragOver records the insertion point for the pointer hovering row index and
// returns it.
func (e *Editor[T, P]) DragOver(index int, pointerY float64, box ordering.Box) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draggingID == "" {
		return -1
	}
	e.hoverIndex = ordering.InsertionIndex(index, pointerY, box)
	return e.hoverIndex
}

// Drop commits the pending drag. The dragged item is located by identity at
// this point, so changes made to the list during the gesture are tolerated.
// Gesture state is released on every path.
func (e *Editor[T, P]) Drop(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.releaseDrag()

	if e.draggingID == "" || e.hoverIndex < 0 {
		return false, nil
	}
	return e.move(ctx, "drop", e.draggingID, e.hoverIndex)
}

// DragEnd releases gesture state without committing.
func (e *Editor[T, P]) DragEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releaseDrag()
}

// Cancel releases gesture state after a pointer cancel.
func (e *Editor[T, P]) Cancel() {
	e.DragEnd()
}

// Drag runs a whole gesture at once: id is dropped at the insertion point
// for pointerY over row index. It returns that insertion point and whether
// the order changed. The interactive gesture state is left alone.
func (e *Editor[T, P]) Drag(ctx context.Context, id string, index int, pointerY float64, box ordering.Box) (int, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target := ordering.InsertionIndex(index, pointerY, box)
	moved, err := e.move(ctx, "drag", id, target)
	return target, moved, err
}

// Move relocates id to the insertion point target (positions before removal).
func (e *Editor[T, P]) Move(ctx context.Context, id string, target int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.move(ctx, "move", id, target)
}

func (e *Editor[T, P]) move(ctx context.Context, op, id string, target int) (bool, error) {
	changed, err := e.commit(ctx, op, func(items []T) ([]T, error) {
		next, changed := ordering.Move[T, P](items, id, target)
		if !changed {
			return nil, e.unchanged(items, op, id)
		}
		return next, nil
	})
	if changed {
		e.debug("item moved", "id", id, "target", target)
	}
	return changed, err
}

// InsertAt creates an item right after the item at 1-based position anchor
// (0 for the front, nil for the end) and commits the renumbered list.
func (e *Editor[T, P]) InsertAt(ctx context.Context, anchor *int, title string) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item := e.newItem(e.newID(), title)
	id := P(&item).ItemID()
	var inserted T
	if _, err := e.commit(ctx, "insert", func(items []T) ([]T, error) {
		next := ordering.InsertAfter[T, P](items, anchor, item)
		inserted = next[ordering.IndexOf[T, P](next, id)]
		return next, nil
	}); err != nil {
		var zero T
		return zero, err
	}

	e.debug("item inserted", "id", id, "order", P(&inserted).ItemOrder())
	return inserted, nil
}

// Replace commits items verbatim. It keeps whole-list replacements ordered
// with the editor's own commits.
func (e *Editor[T, P]) Replace(ctx context.Context, items []T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make([]T, len(items))
	copy(next, items)
	_, err := e.commit(ctx, "replace", func([]T) ([]T, error) {
		return next, nil
	})
	return err
}

// Update commits fn's result under the editor lock. fn reports false to leave
// the list as it was.
func (e *Editor[T, P]) Update(ctx context.Context, fn func(items []T) ([]T, bool)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.commit(ctx, "update", func(items []T) ([]T, error) {
		next, ok := fn(items)
		if !ok {
			return nil, errUnchanged
		}
		return next, nil
	})
}

// Delete removes id and renumbers the remaining items.
func (e *Editor[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.commit(ctx, "delete", func(items []T) ([]T, error) {
		next, removed := ordering.Remove[T, P](items, id)
		if !removed {
			return nil, e.unchanged(items, "delete", id)
		}
		return next, nil
	})
	if !removed {
		return false, err
	}
	if e.selectedID == id {
		e.selectedID = ""
	}
	if e.editingID == id {
		e.clearEdit()
	}
	if e.draggingID == id {
		e.releaseDrag()
	}
	e.debug("item deleted", "id", id)
	return true, nil
}

// Select marks id as the selected item.
func (e *Editor[T, P]) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = id
}

// BeginEdit enters edit mode for id with its current title as pending text.
func (e *Editor[T, P]) BeginEdit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := e.list.Items()
	idx := ordering.IndexOf[T, P](items, id)
	if idx < 0 {
		return e.missing("edit", id)
	}
	e.selectedID = id
	e.editingID = id
	e.editText = P(&items[idx]).ItemTitle()
	return nil
}

// SetEditText updates the pending edit text.
func (e *Editor[T, P]) SetEditText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editText = text
}

// CommitEdit replaces the title of id and leaves edit mode.
func (e *Editor[T, P]) CommitEdit(ctx context.Context, id, title string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.clearEdit()

	edited, err := e.commit(ctx, "edit", func(items []T) ([]T, error) {
		next, ok := ordering.UpdateWhere[T, P](items, id, func(p P) {
			p.SetTitle(title)
		})
		if !ok {
			return nil, e.unchanged(items, "edit", id)
		}
		return next, nil
	})
	if edited {
		e.debug("item edited", "id", id)
	}
	return edited, err
}

// CancelEdit leaves edit mode without committing.
func (e *Editor[T, P]) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearEdit()
}

// ResetTransient clears selection, edit and drag state.
func (e *Editor[T, P]) ResetTransient() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = ""
	e.clearEdit()
	e.releaseDrag()
}

// State returns a copy of the transient state.
func (e *Editor[T, P]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		DraggingID: e.draggingID,
		HoverIndex: e.hoverIndex,
		SelectedID: e.selectedID,
		EditingID:  e.editingID,
		EditText:   e.editText,
	}
}

func (e *Editor[T, P]) releaseDrag() {
	e.draggingID = ""
	e.hoverIndex = -1
}

func (e *Editor[T, P]) clearEdit() {
	e.editingID = ""
	e.editText = ""
}

// commit applies fn through the list's Update. It reports false when fn
// left the list unchanged or the id was missing.
func (e *Editor[T, P]) commit(ctx context.Context, op string, fn func(items []T) ([]T, error)) (bool, error) {
	err := e.list.Update(ctx, fn)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return false, err
	}
	return false, fmt.Errorf("committing %s: %w", op, err)
}

// unchanged aborts an update: with a NotFoundError when id is absent and the
// editor is strict, otherwise with errUnchanged.
func (e *Editor[T, P]) unchanged(items []T, op, id string) error {
	if ordering.IndexOf[T, P](items, id) < 0 {
		if err := e.missing(op, id); err != nil {
			return err
		}
	}
	return errUnchanged
}

func (e *Editor[T, P]) missing(op, id string) error {
	if !e.strict {
		return nil
	}
	return &NotFoundError{Op: op, ID: id}
}

func (e *Editor[T, P]) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
