// Package cache models a data cache in front of the golden model's data
// memory using Akita cache components.
//
// The model tracks tags only. Data memory stays the single source of truth
// for values; the cache predicts which LW/SW accesses of a program hit, miss
// or evict, so a design under test with a data cache can be checked against
// the expected access pattern.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/rvgold/config"
	"github.com/sarchlab/rvgold/emu"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles
	MissLatency uint64
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// Writeback is true if the replaced block was dirty.
	Writeback bool
	// EvictedAddr is the block address of the evicted block.
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
	// Cycles is the sum of access latencies.
	Cycles uint64
}

// HitRate returns Hits / (Reads + Writes), or 0 with no accesses.
func (s Statistics) HitRate() float64 {
	total := s.Reads + s.Writes
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a write-back, write-allocate set-associative cache with LRU
// replacement.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a new cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// FromConfig creates a cache from the session configuration.
func FromConfig(cc config.CacheConfig) *Cache {
	return New(Config{
		Size:          cc.Size,
		Associativity: cc.Associativity,
		BlockSize:     cc.BlockSize,
		HitLatency:    cc.HitLatency,
		MissLatency:   cc.MissLatency,
	})
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read records a load from the byte address addr.
func (c *Cache) Read(addr uint64) AccessResult {
	c.stats.Reads++
	return c.access(addr, false)
}

// Write records a store to the byte address addr.
func (c *Cache) Write(addr uint64) AccessResult {
	c.stats.Writes++
	return c.access(addr, true)
}

func (c *Cache) access(addr uint64, isWrite bool) AccessResult {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if isWrite {
			block.IsDirty = true
		}
		c.stats.Cycles += c.config.HitLatency
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	result := c.handleMiss(blockAddr, isWrite)
	c.stats.Cycles += result.Latency
	return result
}

// handleMiss allocates a block for blockAddr, evicting the LRU victim.
func (c *Cache) handleMiss(blockAddr uint64, isWrite bool) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag
		if victim.IsDirty {
			c.stats.Writebacks++
			result.Writeback = true
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite
	c.directory.Visit(victim)

	return result
}

// Invalidate marks the block containing addr as invalid without writeback.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush writes back all dirty blocks and invalidates them. It returns the
// number of writebacks.
func (c *Cache) Flush() uint64 {
	var n uint64
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				n++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
	c.stats.Writebacks += n
	return n
}

// Reset invalidates all blocks and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// Trace implements emu.Tracer. LW and SW accesses are replayed against the
// cache at the word-aligned byte address of the accessed data word.
func (c *Cache) Trace(ev *emu.TraceEvent) {
	access := ev.Effect.Access
	addr := uint64(access.Index) * 4

	switch access.Kind {
	case emu.AccessLoad:
		c.Read(addr)
	case emu.AccessStore:
		c.Write(addr)
	}
}
