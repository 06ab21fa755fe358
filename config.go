// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"go.uber.org/zap"
)

// configs is used to store the values of the different parameters of the DD.
type configs struct {
	varnum          int     // number of BDD variables
	zvarnum         int     // number of ZDD variables
	nodesize        int     // initial number of nodes in the arena
	uniquesize      int     // initial number of buckets in each unique subtable
	cachesize       int     // initial cache size (general)
	cacheratio      int     // ratio (%) between cache size and arena size, 0 if the caches never grow
	maxcachehard    int     // hard ceiling on the size of each cache, 0 if no limit. The hard ceiling wins over the ratio
	looseupto       int     // looseness threshold; stored for ReadLooseUpTo, no table reads it
	maxnodesize     int     // maximum total number of allocated nodes (0 if no limit)
	maxlive         int     // maximum number of live nodes (0 if no limit)
	maxnodeincrease int     // maximum number of nodes that can be added to the arena at each resize (0 if no limit)
	maxmemory       int64   // memory budget in bytes for the arena (0 if no limit)
	minfreenodes    int     // minimum number of free nodes (%) that should be left after GC before triggering a resize
	mindead         int     // number of dead nodes under which an allocation failure resizes instead of collecting
	gcenabled       bool    // whether garbage collection may run at all
	maxgrowth       float64 // growth ratio above which a sifting direction is abandoned
	maxgrowthalt    float64 // growth ratio used by the converging variants
	nextreorder     int     // live-node count that triggers the next automatic reordering
	reordercycle    int     // multiplier applied to nextreorder after each automatic reordering
	randseed        int64   // seed of the deterministic PRNG used by the randomized reorder methods
}

func makeconfigs(varnum int) *configs {
	c := &configs{varnum: varnum}
	c.minfreenodes = _MINFREENODES
	c.maxnodeincrease = _DEFAULTMAXNODEINC
	// we build enough nodes to include the constants and all the variables
	c.nodesize = 8*varnum + 64
	c.uniquesize = 64
	c.cachesize = 10000
	c.gcenabled = true
	c.mindead = 16
	c.maxgrowth = 1.2
	c.maxgrowthalt = 1.5
	c.nextreorder = 4096
	c.reordercycle = 2
	c.randseed = 1
	return c
}

// Nodesize is a configuration option (function). Used as a parameter in New it
// sets a preferred initial size for the node arena. The size of the DD can
// increase during computation. The initial number of nodes is not critical,
// since the arena is resized whenever there are too few nodes left after a
// garbage collection.
func Nodesize(size int) func(*configs) {
	return func(c *configs) {
		if size >= 8*c.varnum+64 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option (function). Used as a parameter in New
// it sets a limit to the number of allocated nodes. An operation trying to
// raise the number of nodes above this limit will generate an error and return
// a nil Node. The default value (0) means that there is no limit.
func Maxnodesize(size int) func(*configs) {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// Maxnodeincrease is a configuration option (function). Used as a parameter in
// New it sets a limit on the increase in size of the node arena. Below this
// limit we typically double the size of the arena each time we need to resize
// it. The default value is about a million nodes. Set the value to zero to
// avoid imposing a limit.
func Maxnodeincrease(size int) func(*configs) {
	return func(c *configs) {
		c.maxnodeincrease = size
	}
}

// Maxmemory is a configuration option (function). Used as a parameter in New
// it sets a budget, in bytes, for the node arena. Allocations that would grow
// the arena past the budget fail with MemoryOut. The default value (0) means
// no budget.
func Maxmemory(bytes int64) func(*configs) {
	return func(c *configs) {
		c.maxmemory = bytes
	}
}

// Minfreenodes is a configuration option (function). Used as a parameter in
// New it sets the ratio of free nodes (%) that has to be left after a garbage
// collection event. With a ratio of, say 25, we resize the arena if the number
// of free nodes is less than 25% of its capacity. The default value is 20%.
func Minfreenodes(ratio int) func(*configs) {
	return func(c *configs) {
		c.minfreenodes = ratio
	}
}

// Uniquesize is a configuration option (function). Used as a parameter in New
// it sets the initial number of buckets in each unique subtable. Subtables
// grow by doubling when their mean chain length passes a fixed threshold.
func Uniquesize(size int) func(*configs) {
	return func(c *configs) {
		if size > 0 {
			c.uniquesize = size
		}
	}
}

// Cachesize is a configuration option (function). Used as a parameter in New
// it sets the initial number of entries in the operation caches. The default
// value is 10 000. See also the Cacheratio config.
func Cachesize(size int) func(*configs) {
	return func(c *configs) {
		c.cachesize = size
	}
}

// Cacheratio is a configuration option (function). Used as a parameter in New
// it sets a "cache ratio" (%) so that caches can grow each time we resize the
// node arena. With a cache ratio of r, we have r available entries in the
// cache for every 100 slots in the arena. The default value (0) means that
// the cache size never grows. The hard ceiling set with SetMaxCacheHard always
// wins over the ratio.
func Cacheratio(ratio int) func(*configs) {
	return func(c *configs) {
		c.cacheratio = ratio
	}
}

// Zddvarnum is a configuration option (function). Used as a parameter in New
// it declares an initial number of ZDD variables. The ZDD universe can also be
// created later with ZddVarsFromBddVars.
func Zddvarnum(num int) func(*configs) {
	return func(c *configs) {
		if num > 0 {
			c.zvarnum = num
		}
	}
}

// Randseed is a configuration option (function). Used as a parameter in New it
// seeds the deterministic PRNG used by the randomized reordering methods, so
// that runs are reproducible. The default seed is 1.
func Randseed(seed int64) func(*configs) {
	return func(c *configs) {
		c.randseed = seed
	}
}

// ************************************************************

// SetLogger installs a zap logger on the DD; GC, resize and reordering events
// are reported through it. The default logger is a nop.
func (b *DD) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	b.logger = l
}

// SetMaxMemory changes the memory budget, in bytes, for the node arena.
func (b *DD) SetMaxMemory(bytes int64) { b.maxmemory = bytes }

// ReadMaxMemory returns the memory budget for the node arena.
func (b *DD) ReadMaxMemory() int64 { return b.maxmemory }

// SetMaxLive changes the hard ceiling on the number of live nodes; operations
// that would grow the DD above it fail with TooManyNodes. Zero means no limit.
func (b *DD) SetMaxLive(n int) { b.maxlive = n }

// ReadMaxLive returns the hard ceiling on the number of live nodes.
func (b *DD) ReadMaxLive() int { return b.maxlive }

// SetMaxCacheHard changes the hard ceiling on the number of entries of each
// operation cache. The hard ceiling wins over the cache ratio. The new ceiling
// applies when the caches next grow with the arena; a cache already larger
// than the ceiling keeps its size.
func (b *DD) SetMaxCacheHard(n int) {
	b.maxcachehard = n
	b.applycache.hard = n
	b.itecache.hard = n
	b.additecache.hard = n
	b.zitecache.hard = n
	b.quantcache.hard = n
	b.appexcache.hard = n
	b.replacecache.hard = n
	b.misccache.hard = n
}

// ReadMaxCacheHard returns the hard ceiling on the cache sizes.
func (b *DD) ReadMaxCacheHard() int { return b.maxcachehard }

// SetLooseUpTo records the looseness threshold returned by ReadLooseUpTo. No
// table reads it: the unique subtables grow only when their mean chain length
// passes a fixed threshold, and the caches only when the arena is resized.
func (b *DD) SetLooseUpTo(n int) { b.looseupto = n }

// ReadLooseUpTo returns the looseness threshold.
func (b *DD) ReadLooseUpTo() int { return b.looseupto }

// SetGarbageCollection enables or disables garbage collection. With GC
// disabled, dead nodes are reclaimed only when the arena cannot grow.
func (b *DD) SetGarbageCollection(on bool) { b.gcenabled = on }

// ReadGarbageCollection reports whether garbage collection is enabled.
func (b *DD) ReadGarbageCollection() bool { return b.gcenabled }

// SetMinDead changes the number of dead nodes below which an exhausted free
// list resizes the arena instead of collecting.
func (b *DD) SetMinDead(n int) { b.mindead = n }

// ReadMinDead returns the minimum dead-node count for collection.
func (b *DD) ReadMinDead() int { return b.mindead }

// SetMaxGrowth changes the ratio by which the DD may grow during one sifting
// direction before the direction is abandoned. The default is 1.2.
func (b *DD) SetMaxGrowth(r float64) { b.maxgrowth = r }

// ReadMaxGrowth returns the sifting growth ratio.
func (b *DD) ReadMaxGrowth() float64 { return b.maxgrowth }

// SetMaxGrowthAlternate changes the growth ratio used by the converging
// reordering variants.
func (b *DD) SetMaxGrowthAlternate(r float64) { b.maxgrowthalt = r }

// ReadMaxGrowthAlternate returns the alternate growth ratio.
func (b *DD) ReadMaxGrowthAlternate() float64 { return b.maxgrowthalt }

// SetNextReordering changes the live-node count that triggers the next
// automatic reordering when autodyn is enabled.
func (b *DD) SetNextReordering(n int) { b.nextreorder = n }

// ReadNextReordering returns the next automatic-reordering threshold.
func (b *DD) ReadNextReordering() int { return b.nextreorder }

// SetReorderingCycle changes the multiplier applied to the automatic
// reordering threshold after each automatic reordering.
func (b *DD) SetReorderingCycle(n int) {
	if n > 1 {
		b.reordercycle = n
	}
}

// ReadReorderingCycle returns the automatic-reordering multiplier.
func (b *DD) ReadReorderingCycle() int { return b.reordercycle }

func logerr(err error) zap.Field {
	return zap.Error(err)
}
