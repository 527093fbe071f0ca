// Package cache implements the fixed-capacity block cache shared across
// all open files: lookup by (device, sector, block), LRU-style eviction
// keyed on a monotonic per-entry counter, and hit/miss accounting.
//
// The teacher's own SDO client scans its cache-equivalent (the internal
// fifo) linearly; this port indexes by address with a map instead,
// scanning for the eviction victim only on insert when the pool is
// already full.
package cache

import (
	"github.com/ordlucas/lcloud/internal/frame"
	log "github.com/sirupsen/logrus"
)

// Address uniquely identifies one device block.
type Address struct {
	Dev uint8
	Sec uint16
	Blk uint16
}

type entry struct {
	addr    Address
	payload [frame.BlockSize]byte
	t       uint64
}

// Cache is a bounded pool of at most Capacity block entries.
type Cache struct {
	capacity int
	entries  []entry
	index    map[Address]int
	clock    uint64

	hits   uint64
	misses uint64
}

// New allocates a cache with the given capacity.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make([]entry, 0, capacity),
		index:    make(map[Address]int, capacity),
	}
}

// Get returns the cached payload for addr and whether it was present. On
// a hit it increments the hit counter and logs; on a miss it increments
// the miss counter.
func (c *Cache) Get(addr Address) ([]byte, bool) {
	i, ok := c.index[addr]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	log.Debugf("[CACHE] hit dev=%d sec=%d blk=%d", addr.Dev, addr.Sec, addr.Blk)
	return c.entries[i].payload[:], true
}

// Put inserts or updates the entry for addr with payload, which must be
// exactly frame.BlockSize bytes. An existing entry is overwritten in
// place; otherwise a new entry is appended while there is room, and once
// full the entry with the smallest t (ties broken by lowest index) is
// evicted and replaced.
func (c *Cache) Put(addr Address, payload []byte) {
	c.clock++
	if i, ok := c.index[addr]; ok {
		copy(c.entries[i].payload[:], payload)
		c.entries[i].t = c.clock
		return
	}
	if len(c.entries) < c.capacity {
		e := entry{addr: addr, t: c.clock}
		copy(e.payload[:], payload)
		c.entries = append(c.entries, e)
		c.index[addr] = len(c.entries) - 1
		return
	}
	victim := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].t < c.entries[victim].t {
			victim = i
		}
	}
	delete(c.index, c.entries[victim].addr)
	c.entries[victim] = entry{addr: addr, t: c.clock}
	copy(c.entries[victim].payload[:], payload)
	c.index[addr] = victim
}

// Stats reports cumulative hit/miss counters and the hit ratio (0 when no
// lookups have occurred yet).
type Stats struct {
	Hits   uint64
	Misses uint64
	Ratio  float64
}

func (c *Cache) Stats() Stats {
	total := c.hits + c.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return Stats{Hits: c.hits, Misses: c.misses, Ratio: ratio}
}

// Close releases the cache's entries and logs final statistics.
func (c *Cache) Close() {
	stats := c.Stats()
	log.Infof("[CACHE] closing: hits=%d misses=%d ratio=%.3f", stats.Hits, stats.Misses, stats.Ratio)
	c.entries = nil
	c.index = nil
}
