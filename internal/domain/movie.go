package domain

import "fmt"

// Movie is the ordered sequence of committed input bytes together with
// a parallel sequence of short textual annotations. The two slices are
// always the same length.
type Movie struct {
	inputs      []byte
	annotations []string
}

// NewMovie returns an empty movie.
func NewMovie() *Movie {
	return &Movie{}
}

// Commit appends one input with its annotation.
func (m *Movie) Commit(input byte, annotation string) {
	m.inputs = append(m.inputs, input)
	m.annotations = append(m.annotations, annotation)
}

// Len returns the number of committed inputs.
func (m *Movie) Len() int { return len(m.inputs) }

// Inputs returns the committed inputs. The slice is shared; callers
// must not mutate it.
func (m *Movie) Inputs() []byte { return m.inputs }

// Annotations returns the committed annotations, parallel to Inputs.
func (m *Movie) Annotations() []string { return m.annotations }

// Suffix returns a copy of the inputs from movenum to the end.
func (m *Movie) Suffix(movenum int) []byte {
	if movenum < 0 || movenum > len(m.inputs) {
		panic(fmt.Sprintf("movie: suffix index %d out of range [0,%d]", movenum, len(m.inputs)))
	}
	out := make([]byte, len(m.inputs)-movenum)
	copy(out, m.inputs[movenum:])
	return out
}

// Rewind truncates the movie to movenum inputs.
func (m *Movie) Rewind(movenum int) {
	if movenum < 0 || movenum > len(m.inputs) {
		panic(fmt.Sprintf("movie: rewind target %d out of range [0,%d]", movenum, len(m.inputs)))
	}
	m.inputs = m.inputs[:movenum]
	m.annotations = m.annotations[:movenum]
}

// Checkpoint is a saved emulator state paired with the movie length at
// which it was taken. It is a potential backtrack target.
type Checkpoint struct {
	Snapshot []byte
	Movenum  int
}

// Checkpoints is a list of checkpoints ordered by strictly increasing
// Movenum.
type Checkpoints struct {
	list []Checkpoint
}

// Push appends a checkpoint. Movenum must exceed the last entry's.
func (c *Checkpoints) Push(cp Checkpoint) {
	if n := len(c.list); n > 0 && cp.Movenum <= c.list[n-1].Movenum {
		panic(fmt.Sprintf("checkpoints: movenum %d not increasing (last %d)", cp.Movenum, c.list[n-1].Movenum))
	}
	c.list = append(c.list, cp)
}

// Len returns the number of checkpoints.
func (c *Checkpoints) Len() int { return len(c.list) }

// At returns the i-th checkpoint.
func (c *Checkpoints) At(i int) Checkpoint { return c.list[i] }

// Latest returns the most recent checkpoint cp satisfying keep(cp),
// scanning newest to oldest. ok is false if none matches.
func (c *Checkpoints) Latest(keep func(Checkpoint) bool) (cp Checkpoint, ok bool) {
	for i := len(c.list) - 1; i >= 0; i-- {
		if keep(c.list[i]) {
			return c.list[i], true
		}
	}
	return Checkpoint{}, false
}

// TruncateAbove drops, in LIFO order, every checkpoint whose Movenum
// exceeds movenum. Used when the movie is rewound.
func (c *Checkpoints) TruncateAbove(movenum int) {
	for len(c.list) > 0 && c.list[len(c.list)-1].Movenum > movenum {
		c.list = c.list[:len(c.list)-1]
	}
}
