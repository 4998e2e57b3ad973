package ledger

import (
	"context"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// balanceCache keeps computed balance reports per trip.
//
// Every write to a trip moves the trip to a new generation. A report computed
// from a snapshot taken under an older generation is returned to its caller
// but never stored, so an in-flight read cannot resurrect stale balances.
//
// Generations live in the LRU entries. Trips without an entry share the
// floor generation, which advances whenever such a trip is written or an
// entry is evicted. Generation numbers are never reused.
type balanceCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, cachedReport]
	seq     uint64
	floor   uint64

	flights singleflight.Group
}

// cachedReport holds the trip's generation. report is nil when the trip was
// written after its last computation.
type cachedReport struct {
	gen    uint64
	report *BalanceReport
}

func newBalanceCache(size int) (*balanceCache, error) {
	c := &balanceCache{}
	entries, err := lru.NewWithEvict(size, func(string, cachedReport) {
		// Called from Add or Remove, with c.mu held.
		c.floor = c.next()
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

func (c *balanceCache) next() uint64 {
	c.seq++
	return c.seq
}

// generation returns the current generation of tripID. Callers hold c.mu.
func (c *balanceCache) generation(tripID string) uint64 {
	if entry, ok := c.entries.Peek(tripID); ok {
		return entry.gen
	}
	return c.floor
}

// get returns the cached report for tripID and the trip's current generation.
func (c *balanceCache) get(tripID string) (*BalanceReport, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(tripID)
	if !ok {
		return nil, c.floor, false
	}
	if entry.report == nil {
		return nil, entry.gen, false
	}
	return entry.report, entry.gen, true
}

// put stores report if no write happened since gen was read.
func (c *balanceCache) put(tripID string, gen uint64, report *BalanceReport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation(tripID) != gen {
		return false
	}
	c.entries.Add(tripID, cachedReport{gen: gen, report: report})
	return true
}

// invalidate drops the trip's report and advances its generation.
func (c *balanceCache) invalidate(tripID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries.Contains(tripID) {
		c.entries.Add(tripID, cachedReport{gen: c.next()})
		return
	}
	c.floor = c.next()
}

// len reports how many trips the cache tracks.
func (c *balanceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// do coalesces concurrent computations for the same trip and generation.
// The computation runs detached from ctx's cancellation so one waiter giving
// up does not fail the others.
func (c *balanceCache) do(ctx context.Context, tripID string, gen uint64, fn func(context.Context) (*BalanceReport, error)) (*BalanceReport, error) {
	key := tripID + "@" + strconv.FormatUint(gen, 10)
	ch := c.flights.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*BalanceReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
