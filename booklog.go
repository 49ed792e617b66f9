package simlob

import (
	"sync"

	"github.com/shopspring/decimal"

	"latsim/protocol"
)

type LogType = protocol.LogType

const (
	LogTypeOpen   LogType = protocol.LogTypeOpen
	LogTypeMatch  LogType = protocol.LogTypeMatch
	LogTypeCancel LogType = protocol.LogTypeCancel
	LogTypeAmend  LogType = protocol.LogTypeAmend
	LogTypeReject LogType = protocol.LogTypeReject
)

type RejectReason = protocol.RejectReason

const (
	RejectReasonNone             RejectReason = protocol.RejectReasonNone
	RejectReasonNoLiquidity      RejectReason = protocol.RejectReasonNoLiquidity
	RejectReasonInsufficientSize RejectReason = protocol.RejectReasonInsufficientSize
	RejectReasonWouldCrossSpread RejectReason = protocol.RejectReasonWouldCrossSpread
	RejectReasonInvalidSide      RejectReason = protocol.RejectReasonInvalidSide
	RejectReasonInvalidPrice     RejectReason = protocol.RejectReasonInvalidPrice
	RejectReasonOrderNotFound    RejectReason = protocol.RejectReasonOrderNotFound
)

// BookLog is one order-book event: open, match, cancel, amend, or
// reject. SequenceID is an id that increases by one per log within one
// OrderBook, used for ordering,
// deduplication, and rebuild synchronization by anything replaying the
// log (see DepthCache). Reject does not change book state but still
// consumes a sequence id.
type BookLog struct {
	SequenceID   uint64
	TradeID      uint64
	Type         LogType
	Side         Side
	Price        decimal.Decimal
	Size         decimal.Decimal
	Amount       decimal.Decimal
	OldPrice     decimal.Decimal
	OldSize      decimal.Decimal
	OrderID      string
	UserID       uint64
	OrderType    OrderType
	Status       OrderStatus // OrderID's resulting status; set for LogTypeMatch
	MakerOrderID string
	MakerUserID  uint64
	MakerStatus  OrderStatus // MakerOrderID's resulting status; set for LogTypeMatch
	RejectReason RejectReason
}

var bookLogPool = sync.Pool{
	New: func() interface{} {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	*log = BookLog{}
	bookLogPool.Put(log)
}

// PublishLog is the sink an OrderBook writes its event stream to.
//
// Implementations must either process logs synchronously before
// returning, or clone them: the caller recycles BookLog objects to a
// sync.Pool immediately after Publish returns.
type PublishLog interface {
	Publish(...*BookLog)
}

// MemoryPublishLog stores logs in memory, e.g. for tests or for a
// caller that later feeds them to DepthCache.Replay.
type MemoryPublishLog struct {
	mu   sync.RWMutex
	logs []*BookLog
}

// NewMemoryPublishLog creates an empty MemoryPublishLog.
func NewMemoryPublishLog() *MemoryPublishLog {
	return &MemoryPublishLog{logs: make([]*BookLog, 0)}
}

func (m *MemoryPublishLog) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range logs {
		cp := new(BookLog)
		*cp = *l
		m.logs = append(m.logs, cp)
	}
}

// Count returns the number of logs stored.
func (m *MemoryPublishLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}

// Logs returns a copy of every log stored, in publish order.
func (m *MemoryPublishLog) Logs() []*BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*BookLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// DiscardPublishLog drops everything; used for benchmarking and as the
// OrderBook default when the caller supplies no sink.
type DiscardPublishLog struct{}

// NewDiscardPublishLog creates a DiscardPublishLog.
func NewDiscardPublishLog() *DiscardPublishLog { return &DiscardPublishLog{} }

func (DiscardPublishLog) Publish(...*BookLog) {}
