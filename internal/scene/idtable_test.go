package scene

import "testing"

func TestTable(t *testing.T) {
	tbl := NewTable[*int]()
	a, b := new(int), new(int)

	tbl.Put(1, a)
	tbl.Put(7, b)

	if h, ok := tbl.Handle(1); !ok || h != a {
		t.Errorf("Handle(1) = %v, %v", h, ok)
	}
	if id, ok := tbl.ID(b); !ok || id != 7 {
		t.Errorf("ID(b) = %d, %v", id, ok)
	}
	if _, ok := tbl.Handle(99); ok {
		t.Errorf("Handle(99) should miss")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}

	// Re-binding an id replaces the old pair.
	tbl.Put(1, b)
	if h, _ := tbl.Handle(1); h != b {
		t.Errorf("rebound Handle(1) = %v, want b", h)
	}
}
