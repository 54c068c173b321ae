package dsa

import "testing"

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2)
	c.Put("a", []byte{1})
	c.Put("b", []byte{2})
	c.Put("c", []byte{3})

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry survived past capacity")
	}
	if v, ok := c.Get("b"); !ok || v[0] != 2 {
		t.Error("entry b missing")
	}
	if v, ok := c.Get("c"); !ok || v[0] != 3 {
		t.Error("entry c missing")
	}
}

func TestLRURecencyOrder(t *testing.T) {
	c := NewLRU(2)
	c.Put("a", []byte{1})
	c.Put("b", []byte{2})
	c.Get("a") // refresh a; b is now the eviction target
	c.Put("c", []byte{3})

	if _, ok := c.Get("b"); ok {
		t.Error("refreshed ordering ignored: b survived")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry evicted")
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU(2)
	c.Put("a", []byte{1})
	c.Put("a", []byte{9})
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if v, _ := c.Get("a"); v[0] != 9 {
		t.Errorf("value = %v, want 9", v[0])
	}
}

func TestLRUZeroCapacity(t *testing.T) {
	c := NewLRU(0)
	c.Put("a", []byte{1})
	if _, ok := c.Get("a"); ok {
		t.Error("zero-capacity cache stored an entry")
	}
}

func TestLRUReset(t *testing.T) {
	c := NewLRU(4)
	c.Put("a", []byte{1})
	c.Reset(8)
	if c.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Reset")
	}
}
