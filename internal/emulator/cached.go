package emulator

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/ddugovic/tasbot/internal/infra/dsa"
	"github.com/ddugovic/tasbot/internal/infra/observability"
)

// Cached wraps a Console with the two-tier step cache: an in-memory
// LRU (tier A) in front of an optional on-disk badger store (tier B).
// Entries map (state, input) to the successor state, so a cache hit
// replaces a full emulation step with a snapshot load.
type Cached struct {
	inner Console
	memA  *dsa.LRU
	db    *badger.DB
	capB  int64
	nB    atomic.Int64
	log   zerolog.Logger
}

// NewCached attaches a step cache to inner. dir selects the tier B
// directory; an empty dir runs tier A only.
func NewCached(inner Console, dir string, capacityA, capacityB int, log zerolog.Logger) (*Cached, error) {
	c := &Cached{
		inner: inner,
		memA:  dsa.NewLRU(capacityA),
		capB:  int64(capacityB),
		log:   log,
	}
	if dir != "" {
		opts := badger.DefaultOptions(dir)
		opts.Logger = nil
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open step cache: %w", err)
		}
		c.db = db
	}
	return c, nil
}

// Close releases the tier B store.
func (c *Cached) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// stepKey identifies a (state, input) pair.
func stepKey(state Snapshot, input byte) string {
	h := sha256.New()
	h.Write(state)
	h.Write([]byte{input})
	return string(h.Sum(nil))
}

// Step always emulates; it does not consult or fill the cache.
func (c *Cached) Step(input byte) { c.inner.Step(input) }

// CachedStep consults tier A, then tier B, then emulates. Misses fill
// both tiers.
func (c *Cached) CachedStep(input byte) {
	state := c.inner.Save()
	key := stepKey(state, input)

	if next, ok := c.memA.Get(key); ok {
		observability.StepCacheHits.WithLabelValues("memory").Inc()
		c.inner.Load(Snapshot(next))
		return
	}
	if next, ok := c.diskGet(key); ok {
		observability.StepCacheHits.WithLabelValues("disk").Inc()
		c.memA.Put(key, next)
		c.inner.Load(Snapshot(next))
		return
	}

	observability.StepCacheMisses.Inc()
	c.inner.Step(input)
	next := c.inner.Save()
	c.memA.Put(key, next)
	c.diskPut(key, next)
}

func (c *Cached) diskGet(key string) ([]byte, bool) {
	if c.db == nil {
		return nil, false
	}
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return out, true
}

func (c *Cached) diskPut(key string, next []byte) {
	if c.db == nil || c.nB.Load() >= c.capB {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), next)
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("step cache disk write failed")
		return
	}
	c.nB.Add(1)
}

// Save forwards to the wrapped console.
func (c *Cached) Save() Snapshot { return c.inner.Save() }

// Load forwards to the wrapped console.
func (c *Cached) Load(s Snapshot) { c.inner.Load(s) }

// ReadRAM forwards to the wrapped console.
func (c *Cached) ReadRAM() []byte { return c.inner.ReadRAM() }

// ResetCache drops both tiers and adopts the new capacities.
func (c *Cached) ResetCache(capacityA, capacityB int) {
	c.memA.Reset(capacityA)
	c.capB = int64(capacityB)
	c.nB.Store(0)
	if c.db != nil {
		if err := c.db.DropAll(); err != nil {
			c.log.Warn().Err(err).Msg("step cache disk drop failed")
		}
	}
}
