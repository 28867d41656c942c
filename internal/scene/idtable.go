package scene

// Table is a bidirectional mapping between the external integer ID of an
// entity and its in-memory handle, scoped to one entity kind. A fresh
// table is built for every extraction and every reconstruction; it is
// never shared between calls.
type Table[H comparable] struct {
	byID     map[uint32]H
	byHandle map[H]uint32
}

// NewTable returns an empty table.
func NewTable[H comparable]() *Table[H] {
	return &Table[H]{
		byID:     make(map[uint32]H),
		byHandle: make(map[H]uint32),
	}
}

// Put registers the id ↔ handle pair, replacing any previous binding of
// either side.
func (t *Table[H]) Put(id uint32, h H) {
	t.byID[id] = h
	t.byHandle[h] = id
}

// Handle resolves an external ID to its handle.
func (t *Table[H]) Handle(id uint32) (H, bool) {
	h, ok := t.byID[id]
	return h, ok
}

// ID resolves a handle back to its external ID.
func (t *Table[H]) ID(h H) (uint32, bool) {
	id, ok := t.byHandle[h]
	return id, ok
}

// Len returns the number of registered pairs.
func (t *Table[H]) Len() int {
	return len(t.byID)
}
