package simlob

import (
	"encoding/json"
	"errors"
	"hash/crc32"
)

// OrderBookSnapshot is the full state of one OrderBook at a point in
// virtual time, sufficient to resume matching exactly where it left
// off: every resting order, in the priority order it currently holds,
// plus the counters a resumed book must continue from rather than
// restart at zero.
type OrderBookSnapshot struct {
	SeqID    uint64   `json:"seq_id"`
	TradeID  uint64   `json:"trade_id"`
	TickSize string   `json:"tick_size"`
	LotSize  string   `json:"lot_size"`
	Bids     []*Order `json:"bids"` // best price first
	Asks     []*Order `json:"asks"` // best price first
}

// Snapshot captures the current book state without pausing matching:
// the core is single-threaded, so a caller only ever calls this
// between AddOrder/CancelOrder/AmendOrder/GotoTime calls, never
// concurrently with one.
func (ob *OrderBook) Snapshot() *OrderBookSnapshot {
	snap := &OrderBookSnapshot{
		SeqID:    ob.seqID,
		TradeID:  ob.tradeID,
		TickSize: ob.opts.TickSize.String(),
		LotSize:  ob.opts.LotSize.String(),
		Bids:     ob.bids.toSnapshot(),
		Asks:     ob.asks.toSnapshot(),
	}
	return snap
}

// Restore replaces the book's entire state with what snap describes.
// Orders are reinserted directly, bypassing matching, so restoring a
// snapshot never itself produces trades or BookLogs.
func (ob *OrderBook) Restore(snap *OrderBookSnapshot) {
	ob.seqID = snap.SeqID
	ob.tradeID = snap.TradeID
	ob.bids = NewBidBook(ob.opts.TickSize)
	ob.asks = NewAskBook(ob.opts.TickSize)

	for _, o := range snap.Bids {
		ob.bids.Add(o.Clone())
	}
	for _, o := range snap.Asks {
		ob.asks.Add(o.Clone())
	}
}

// toSnapshot walks the side book best-price-first, then each level's
// resting orders in time priority, and returns independent copies so
// later mutation of the live book cannot corrupt a taken snapshot.
func (sb *SideBook) toSnapshot() []*Order {
	out := make([]*Order, 0, len(sb.orders))
	el := sb.depthList.Front()
	for el != nil {
		lv := el.Value.(*Level)
		for o := lv.head; o != nil; o = o.next {
			out = append(out, o.Clone())
		}
		el = el.Next()
	}
	return out
}

// Checksum returns the CRC32 of snap's canonical JSON encoding, used
// to detect a corrupted or truncated snapshot file before Restore
// trusts it.
func (snap *OrderBookSnapshot) Checksum() (uint32, error) {
	buf, err := json.Marshal(snap)
	if err != nil {
		return 0, err
	}
	return crc32.ChecksumIEEE(buf), nil
}

// checksummedSnapshot is what MarshalSnapshot writes: snap alongside
// its own checksum, so a reader can validate the payload against what
// the writer committed to.
type checksummedSnapshot struct {
	SchemaVersion int                `json:"schema_version"`
	Snapshot      *OrderBookSnapshot `json:"snapshot"`
	Checksum      uint32             `json:"checksum"`
}

func MarshalSnapshot(snap *OrderBookSnapshot) ([]byte, error) {
	sum, err := snap.Checksum()
	if err != nil {
		return nil, err
	}
	return json.Marshal(checksummedSnapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Snapshot:      snap,
		Checksum:      sum,
	})
}

// ErrSnapshotSchemaMismatch is returned by UnmarshalSnapshot when the
// payload was written by a build with a different SnapshotSchemaVersion,
// since this build has no migration path between schema versions.
var ErrSnapshotSchemaMismatch = errors.New("simlob: snapshot schema version mismatch")

func UnmarshalSnapshot(data []byte) (*OrderBookSnapshot, error) {
	var wrapped checksummedSnapshot
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.SchemaVersion != SnapshotSchemaVersion {
		return nil, ErrSnapshotSchemaMismatch
	}
	sum, err := wrapped.Snapshot.Checksum()
	if err != nil {
		return nil, err
	}
	if sum != wrapped.Checksum {
		return nil, ErrInternal
	}
	return wrapped.Snapshot, nil
}
