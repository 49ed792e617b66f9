package simlob

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// DepthCache maintains a simplified view of an order book, tracking
// only price levels and their aggregated sizes. It is built for a
// consumer that only ever sees the BookLog stream (a downstream
// analytics process, a replay tool) and has to reconstruct depth from
// it rather than reading OrderBook directly, so it must detect gaps
// rather than silently drift out of sync.
type DepthCache struct {
	mu    sync.RWMutex
	seqID uint64
	bid   *treemap.TreeMap[int64, decimal.Decimal]
	ask   *treemap.TreeMap[int64, decimal.Decimal]
	tick  decimal.Decimal
}

// NewDepthCache creates an empty DepthCache for a book quoted in the
// given tick size.
func NewDepthCache(tickSize decimal.Decimal) *DepthCache {
	return &DepthCache{
		bid:  treemap.NewWithKeyCompare[int64, decimal.Decimal](func(a, b int64) bool { return a > b }),
		ask:  treemap.NewWithKeyCompare[int64, decimal.Decimal](func(a, b int64) bool { return a < b }),
		tick: tickSize,
	}
}

// SequenceID returns the last log applied.
func (dc *DepthCache) SequenceID() uint64 {
	return atomic.LoadUint64(&dc.seqID)
}

// Replay applies one BookLog to the cached depth. Reject logs still
// advance SequenceID since they consumed a sequence number at the
// source, but never move Size. A log whose SequenceID is not exactly
// dc.SequenceID()+1 means at least one log was dropped between the
// source and this cache, so Replay refuses to apply it: silently
// skipping ahead would leave every subsequent level wrong until the
// next full rebuild.
func (dc *DepthCache) Replay(log *BookLog) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if log.SequenceID != dc.seqID+1 {
		return fmt.Errorf("%w: depth cache expected sequence %d, got %d", ErrInternal, dc.seqID+1, log.SequenceID)
	}
	dc.seqID = log.SequenceID

	change := CalculateDepthChange(log)
	if change.SizeDiff.Sign() == 0 {
		return nil
	}

	side := dc.side(change.Side)
	bucket := Bucket(change.Price, dc.tick)

	cur, _ := side.Get(bucket)
	next := cur.Add(change.SizeDiff)
	if next.Sign() <= 0 {
		side.Del(bucket)
		return nil
	}
	side.Set(bucket, next)
	return nil
}

// OnRebuild resets the cache to empty and pins it at seqID, meant to
// be called right after loading an OrderBookSnapshot taken at that
// sequence so the next Replay call lines up exactly.
func (dc *DepthCache) OnRebuild(seqID uint64) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.bid = treemap.NewWithKeyCompare[int64, decimal.Decimal](func(a, b int64) bool { return a > b })
	dc.ask = treemap.NewWithKeyCompare[int64, decimal.Decimal](func(a, b int64) bool { return a < b })
	dc.seqID = seqID
}

// Depth returns the aggregated size resting at price on side, zero if
// the level does not exist.
func (dc *DepthCache) Depth(side Side, price decimal.Decimal) decimal.Decimal {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	qty, _ := dc.side(side).Get(Bucket(price, dc.tick))
	return qty
}

// Levels returns up to limit levels on side, best first.
func (dc *DepthCache) Levels(side Side, limit int) []DepthLevel {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	out := make([]DepthLevel, 0, limit)
	it := dc.side(side).Iterator()
	for i := 0; i < limit && it.Valid(); i++ {
		out = append(out, DepthLevel{
			Price: decimal.NewFromInt(it.Key()).Mul(dc.tick),
			Qty:   it.Value(),
		})
		it.Next()
	}
	return out
}

func (dc *DepthCache) side(side Side) *treemap.TreeMap[int64, decimal.Decimal] {
	if side == Buy {
		return dc.bid
	}
	return dc.ask
}
