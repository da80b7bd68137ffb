package outline

// DefaultSnapshotKey is the namespace under which outline snapshots are stored.
const DefaultSnapshotKey = "outline-store"

// OutlineCard is one planned slide topic.
type OutlineCard struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

func (c *OutlineCard) ItemID() string     { return c.ID }
func (c *OutlineCard) ItemOrder() int     { return c.Order }
func (c *OutlineCard) SetOrder(order int) { c.Order = order }
func (c *OutlineCard) ItemTitle() string  { return c.Title }
func (c *OutlineCard) SetTitle(t string)  { c.Title = t }

// NewCard builds an unplaced card; its order is assigned on insertion.
func NewCard(id, title string) OutlineCard {
	return OutlineCard{ID: id, Title: title}
}

// Snapshot is the persisted form of the outline store.
type Snapshot struct {
	Outlines      []OutlineCard `json:"outlines"`
	CurrentPrompt string        `json:"currentPrompt"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{CurrentPrompt: s.CurrentPrompt, Outlines: make([]OutlineCard, len(s.Outlines))}
	copy(out.Outlines, s.Outlines)
	return out
}

// SnapshotKey returns the storage key for a tenant's outline snapshot.
func SnapshotKey(namespace, tenantID string) string {
	if namespace == "" {
		namespace = DefaultSnapshotKey
	}
	if tenantID == "" {
		return namespace
	}
	return namespace + "/" + tenantID
}
