// Package rng provides the explicitly-owned random stream used by every
// stochastic operation in the engine. It wraps a ChaCha stream-cipher
// generator so that a textual seed reproduces an identical stream on
// any machine.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"lukechampine.com/frand"
)

// Rand is a seedable random stream.
type Rand struct {
	src *frand.RNG
}

// New returns a Rand seeded from system entropy.
func New() *Rand {
	return &Rand{src: frand.New()}
}

// NewSeeded returns a deterministic Rand keyed by hashing the textual
// seed. Identical seeds yield identical streams.
func NewSeeded(seed string) *Rand {
	key := sha256.Sum256([]byte(seed))
	return &Rand{src: frand.NewCustom(key[:], 1024, 12)}
}

// Uint32 returns a uniform 32-bit value.
func (r *Rand) Uint32() uint32 {
	var buf [4]byte
	r.src.Read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

// Double returns a uniform value in [0,1]. The uint32/(2³²−1) form is
// kept so sampling matches across implementations.
func (r *Rand) Double() float64 {
	return float64(r.Uint32()) / float64(1<<32-1)
}

// Byte returns a uniform byte.
func (r *Rand) Byte() byte {
	var buf [1]byte
	r.src.Read(buf[:])
	return buf[0]
}

// Intn returns a uniform value in [0,n). Panics if n <= 0.
func (r *Rand) Intn(n int) int {
	return r.src.Intn(n)
}

// Coin returns true with probability 1/n.
func (r *Rand) Coin(n int) bool {
	return r.src.Intn(n) == 0
}

// Shuffle permutes n elements via the swap callback.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.src.Shuffle(n, swap)
}

// Span draws a random span over a sequence of length n. The span
// length is biased short: d = Double()^exponent, length =
// ceil(d·(n−1))+1, start uniform in [0, n−length].
func (r *Rand) Span(n, exponent int) (start, length int) {
	if n <= 0 {
		return 0, 0
	}
	d := math.Pow(r.Double(), float64(exponent))
	length = int(math.Ceil(d*float64(n-1))) + 1
	if length > n {
		length = n
	}
	start = int(r.Double() * float64(n-length))
	if start > n-length {
		start = n - length
	}
	return start, length
}
