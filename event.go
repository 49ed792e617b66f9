package simlob

import (
	"github.com/shopspring/decimal"

	"latsim/protocol"
)

// EventKind tags the payload carried by an Event, mirroring
// protocol.EventKind but for the in-process representation Local and
// Exchange actually operate on (an *Order, not its wire encoding).
type EventKind = protocol.EventKind

const (
	EventNewOrder EventKind = protocol.EventKindNewOrder
	EventCancel   EventKind = protocol.EventKindCancel
	EventAmend    EventKind = protocol.EventKindAmend
	EventFill     EventKind = protocol.EventKindFill
	EventAck      EventKind = protocol.EventKindAck
	EventReject   EventKind = protocol.EventKindReject
)

// Event is a time-tagged message shuttled between Local and Exchange
// through an EventPool. FinishTime is always >= the world time at
// enqueue.
type Event struct {
	FinishTime int64
	AssetIdx   int
	Kind       EventKind
	Payload    any
}

// NewOrderEvent carries a newly submitted order Local -> Exchange.
type NewOrderEvent struct {
	Order *Order
}

// CancelEvent requests cancellation of a resting order.
type CancelEvent struct {
	OrderID string
}

// AmendEvent requests a price/size change on a resting order.
type AmendEvent struct {
	OrderID  string
	NewPrice decimal.Decimal
	NewSize  decimal.Decimal
}

// FillEvent is delivered Exchange -> Local for each trade produced by
// a match, maker and taker each receiving their own copy rather than a
// shared pointer into the (possibly still-mutating) live order.
type FillEvent struct {
	OrderID       string
	CounterpartID string
	Side          Side
	Price         decimal.Decimal
	Size          decimal.Decimal
	IsMaker       bool
	Status        OrderStatus
}

// AckEvent is delivered Exchange -> Local when an order opens, amends,
// or is canceled, whether or not the same step also produced fills.
type AckEvent struct {
	OrderID string
	Status  OrderStatus
}

// RejectEvent is delivered Exchange -> Local when TIF policy or
// validation prevents an order from resting or filling.
type RejectEvent struct {
	OrderID string
	Reason  RejectReason
}
