package simlob

import (
	"latsim/structure"
)

// EventPool holds events keyed by finish_time until World drains them.
// Ordering within a finish_time bucket is enqueue order (stable FIFO);
// ordering across buckets follows a BucketTree keyed on finish_time so
// the pool always knows its earliest time in O(1) without a full scan.
//
// A finish_time can hold more than one event (e.g. two orders enqueued
// in the same goto_time step), so the tree only ever tracks which
// finish_times are occupied — the actual FIFO queues live in a
// companion map.
type EventPool struct {
	tree    bucketSet
	buckets map[int64][]Event
	count   int
}

// bucketSet is the ordered-int64-key operations EventPool needs from
// its backing structure. BucketTree and BucketSkiplist both satisfy it
// through the thin adapters below — the design notes call either
// acceptable, so which one backs a given pool is a construction-time
// choice, not a semantic one.
type bucketSet interface {
	Insert(key int64)
	Min() (int64, bool)
	DeleteMin() (int64, bool)
}

type treeBucketSet struct{ *structure.BucketTree }

func (s treeBucketSet) Insert(key int64) { s.BucketTree.Insert(key) }

type skiplistBucketSet struct{ *structure.BucketSkiplist }

func (s skiplistBucketSet) Insert(key int64) {
	// Default-constructed (capacity is a growth hint, not a ceiling;
	// MaxCapacity is left at zero) so Insert can never report
	// ErrMaxCapacityReached here.
	_, _ = s.BucketSkiplist.Insert(key)
}

// NewEventPool creates an empty pool backed by a BucketTree, with room
// for capacity distinct finish_time buckets before it needs to grow.
func NewEventPool(capacity int32) *EventPool {
	return &EventPool{
		tree:    treeBucketSet{structure.NewBucketTree(capacity)},
		buckets: make(map[int64][]Event),
	}
}

// NewEventPoolWithSkiplist creates an empty pool backed by a
// BucketSkiplist instead of the default BucketTree. Useful when a
// caller wants to benchmark the two backings against the same
// workload without touching EventPool's public behavior.
func NewEventPoolWithSkiplist(capacity int32, seed int64) *EventPool {
	return &EventPool{
		tree:    skiplistBucketSet{structure.NewBucketSkiplist(capacity, seed)},
		buckets: make(map[int64][]Event),
	}
}

// Add appends event, updating the cached earliest finish_time.
func (p *EventPool) Add(e Event) {
	if _, ok := p.buckets[e.FinishTime]; !ok {
		p.tree.Insert(e.FinishTime)
	}
	p.buckets[e.FinishTime] = append(p.buckets[e.FinishTime], e)
	p.count++
}

// Len returns the number of events currently held.
func (p *EventPool) Len() int {
	return p.count
}

// IsEmpty reports whether the pool holds no events.
func (p *EventPool) IsEmpty() bool {
	return p.count == 0
}

// Earliest returns the smallest finish_time among held events, or
// (0, false) if the pool is empty.
func (p *EventPool) Earliest() (int64, bool) {
	return p.tree.Min()
}

// DrainUntil partitions events into delivered (finish_time <= t) and
// retained (finish_time > t), keeps the retained set, and returns
// delivered in non-decreasing finish_time order with ties broken by
// enqueue order. Calling DrainUntil(t) again with the same or smaller
// t returns nothing: draining is idempotent.
func (p *EventPool) DrainUntil(t int64) []Event {
	if p.count == 0 {
		return nil
	}
	earliest, ok := p.tree.Min()
	if !ok || earliest > t {
		return nil
	}

	delivered := make([]Event, 0, p.count)
	for {
		bucketTime, ok := p.tree.Min()
		if !ok || bucketTime > t {
			break
		}
		events := p.buckets[bucketTime]
		delivered = append(delivered, events...)
		p.count -= len(events)
		delete(p.buckets, bucketTime)
		p.tree.DeleteMin()
	}

	return delivered
}
