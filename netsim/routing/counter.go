package routing

import "sync/atomic"

// counter is a sharded-free atomic packet counter. spec.md §5 requires
// the per-pair packet counter to be "atomic or sharded per worker"; a
// single atomic field is sufficient since the counter is the only
// mutable state in an otherwise immutable oracle.
type counter struct {
	v atomic.Uint64
}

func (c *counter) add(n uint64) {
	c.v.Add(n)
}

func (c *counter) load() uint64 {
	return c.v.Load()
}
