// Package ordering implements splice-and-renumber transforms for lists whose
// items carry a 1-based order field that must match their array position.
package ordering

// Item is satisfied by a pointer to an ordered list element.
type Item[T any] interface {
	*T
	ItemID() string
	ItemOrder() int
	SetOrder(order int)
}

// Box is the bounding box of a rendered list row along the drag axis.
type Box struct {
	Top    float64
	Height float64
}

// Renumber returns a copy of items with order set to index+1.
func Renumber[T any, P Item[T]](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		P(&out[i]).SetOrder(i + 1)
	}
	return out
}

// IndexOf returns the index of the item with the given id, or -1.
func IndexOf[T any, P Item[T]](items []T, id string) int {
	for i := range items {
		if P(&items[i]).ItemID() == id {
			return i
		}
	}
	return -1
}

// Move relocates the item with the given id to the insertion point target,
// expressed in positions of the list before removal (0..len(items)).
// It reports false and returns items unchanged when the id is missing or the
// move would leave the item where it is.
func Move[T any, P Item[T]](items []T, id string, target int) ([]T, bool) {
	from := IndexOf[T, P](items, id)
	if from < 0 {
		return items, false
	}
	if target < 0 {
		target = 0
	}
	if target > len(items) {
		target = len(items)
	}
	if target == from || target == from+1 {
		return items, false
	}

	moved := items[from]
	rest := make([]T, 0, len(items))
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	// Insertion points after the source shift left once it is removed.
	if target > from {
		target--
	}

	out := make([]T, 0, len(items))
	out = append(out, rest[:target]...)
	out = append(out, moved)
	out = append(out, rest[target:]...)
	return Renumber[T, P](out), true
}

// InsertAfter places item immediately after the item whose 1-based position
// is anchor. Anchor 0 inserts at the front; nil or out of range appends.
func InsertAfter[T any, P Item[T]](items []T, anchor *int, item T) []T {
	at := len(items)
	if anchor != nil && *anchor >= 0 && *anchor <= len(items) {
		at = *anchor
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, item)
	out = append(out, items[at:]...)
	return Renumber[T, P](out)
}

// Remove drops the item with the given id and renumbers the rest.
func Remove[T any, P Item[T]](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for i := range items {
		if P(&items[i]).ItemID() == id {
			found = true
			continue
		}
		out = append(out, items[i])
	}
	if !found {
		return items, false
	}
	return Renumber[T, P](out), true
}

// UpdateWhere returns a copy of items with fn applied to the matching item only.
func UpdateWhere[T any, P Item[T]](items []T, id string, fn func(P)) ([]T, bool) {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		p := P(&out[i])
		if p.ItemID() == id {
			fn(p)
			return out, true
		}
	}
	return items, false
}

// InsertionIndex picks the slot before the hovered row when the pointer is in
// its upper half and after it otherwise.
func InsertionIndex(hovered int, pointerY float64, box Box) int {
	if pointerY < box.Top+box.Height/2 {
		return hovered
	}
	return hovered + 1
}

// Contiguous reports whether the order fields are exactly 1..N in array order.
func Contiguous[T any, P Item[T]](items []T) bool {
	for i := range items {
		if P(&items[i]).ItemOrder() != i+1 {
			return false
		}
	}
	return true
}
