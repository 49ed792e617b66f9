package simlob

import (
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"latsim/protocol"
)

type Side = protocol.Side

const (
	SideNone Side = protocol.SideNone
	Buy      Side = protocol.SideBuy
	Sell     Side = protocol.SideSell
)

type OrderType = protocol.OrderType

const (
	Limit  OrderType = protocol.OrderTypeLimit
	Market OrderType = protocol.OrderTypeMarket
)

type TimeInForce = protocol.TimeInForce

const (
	GTC TimeInForce = protocol.TimeInForceGTC
	GTX TimeInForce = protocol.TimeInForceGTX
	FOK TimeInForce = protocol.TimeInForceFOK
	IOC TimeInForce = protocol.TimeInForceIOC
)

type OrderStatus = protocol.OrderStatus

const (
	StatusNone            OrderStatus = protocol.OrderStatusNone
	StatusNew             OrderStatus = protocol.OrderStatusNew
	StatusExpired         OrderStatus = protocol.OrderStatusExpired
	StatusFilled          OrderStatus = protocol.OrderStatusFilled
	StatusCanceled        OrderStatus = protocol.OrderStatusCanceled
	StatusPartiallyFilled OrderStatus = protocol.OrderStatusPartiallyFilled
	StatusRejected        OrderStatus = protocol.OrderStatusRejected
	StatusUnsupported     OrderStatus = protocol.OrderStatusUnsupported
)

// Order is the value type describing one resting or in-flight order. It
// is pure data: nothing in this file mutates an Order silently on
// failure, callers make status transitions explicit.
type Order struct {
	ID      string
	Side    Side
	Price   decimal.Decimal
	Qty     decimal.Decimal
	ExecQty decimal.Decimal

	// CurrentExecQty/CurrentExecPrice/CurrentIsMaker are stamped by the
	// last match this order took part in. As a maker, CurrentExecQty is
	// that one fill; as the incoming order, it is reset at the start of
	// each SideBook.Match pass and accumulates across levels within it.
	CurrentExecQty   decimal.Decimal
	CurrentExecPrice decimal.Decimal
	CurrentIsMaker   bool

	Type          OrderType
	TIF           TimeInForce
	Status        OrderStatus
	UserID        uint64
	CreateTimeUTC int64

	// HiddenQty and VisibleLimit back iceberg orders: VisibleLimit is the
	// clip size re-displayed each time the visible remainder is
	// exhausted, HiddenQty is the reserve not yet folded into Qty. Zero
	// VisibleLimit means a plain, fully-displayed order. While an
	// iceberg order is the taker, Qty/ExecQty already cover its full
	// size — clipping only happens at the moment it rests (see
	// Level.Add).
	HiddenQty    decimal.Decimal
	VisibleLimit decimal.Decimal

	// Intrusive linked-list pointers used by Level's FIFO queue. Ignored
	// outside the level that owns the order.
	next *Order
	prev *Order
}

// NewOrderID returns a globally sortable id for an order the caller
// left unidentified. World only calls this when Order.ID is empty —
// cross-level id uniqueness otherwise remains the caller's
// responsibility.
func NewOrderID() string {
	return xid.New().String()
}

// Remaining returns qty - exec_qty.
func (o *Order) Remaining() decimal.Decimal {
	return o.Qty.Sub(o.ExecQty)
}

// IsIceberg reports whether o re-displays in clips rather than resting
// with its full remaining quantity visible.
func (o *Order) IsIceberg() bool {
	return o.VisibleLimit.Sign() > 0
}

// Clone returns an independent copy, used when a fill is appended to a
// trade log so later mutation of the live order (the incoming side may
// still be walking further levels) cannot alias into the log.
func (o *Order) Clone() *Order {
	cp := *o
	cp.next = nil
	cp.prev = nil
	return &cp
}
