package domain

import "testing"

func TestMovieAnnotationsParallel(t *testing.T) {
	m := NewMovie()
	for i := 0; i < 25; i++ {
		m.Commit(byte(i), "test")
	}
	if m.Len() != 25 {
		t.Fatalf("Len = %d, want 25", m.Len())
	}
	if len(m.Inputs()) != len(m.Annotations()) {
		t.Errorf("inputs %d != annotations %d", len(m.Inputs()), len(m.Annotations()))
	}

	m.Rewind(10)
	if m.Len() != 10 {
		t.Errorf("Len after rewind = %d, want 10", m.Len())
	}
	if len(m.Inputs()) != len(m.Annotations()) {
		t.Errorf("after rewind: inputs %d != annotations %d", len(m.Inputs()), len(m.Annotations()))
	}
}

func TestMovieSuffix(t *testing.T) {
	m := NewMovie()
	for i := 0; i < 8; i++ {
		m.Commit(byte(i), "s")
	}
	got := m.Suffix(5)
	if len(got) != 3 || got[0] != 5 || got[2] != 7 {
		t.Errorf("Suffix(5) = %v, want [5 6 7]", got)
	}

	// The suffix is a copy: mutating it must not touch the movie.
	got[0] = 99
	if m.Inputs()[5] != 5 {
		t.Error("Suffix aliases the movie inputs")
	}
}

func TestMovieRewindOutOfRange(t *testing.T) {
	m := NewMovie()
	m.Commit(1, "x")
	defer func() {
		if recover() == nil {
			t.Error("Rewind past length did not panic")
		}
	}()
	m.Rewind(2)
}

func TestCheckpointsMonotone(t *testing.T) {
	var cs Checkpoints
	for _, n := range []int{100, 200, 300, 400} {
		cs.Push(Checkpoint{Movenum: n})
	}
	if cs.Len() != 4 {
		t.Fatalf("Len = %d, want 4", cs.Len())
	}

	cp, ok := cs.Latest(func(c Checkpoint) bool { return c.Movenum <= 250 })
	if !ok || cp.Movenum != 200 {
		t.Errorf("Latest(≤250) = %v,%v, want 200,true", cp.Movenum, ok)
	}

	cs.TruncateAbove(200)
	if cs.Len() != 2 || cs.At(cs.Len()-1).Movenum != 200 {
		t.Errorf("TruncateAbove(200) left %d entries, last %d", cs.Len(), cs.At(cs.Len()-1).Movenum)
	}
}

func TestCheckpointsPushNotIncreasing(t *testing.T) {
	var cs Checkpoints
	cs.Push(Checkpoint{Movenum: 100})
	defer func() {
		if recover() == nil {
			t.Error("non-increasing Push did not panic")
		}
	}()
	cs.Push(Checkpoint{Movenum: 100})
}
