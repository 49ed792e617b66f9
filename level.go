package simlob

import (
	"github.com/shopspring/decimal"
)

// Level holds every live order resting at one price on one side, kept
// in FIFO insertion order via an intrusive doubly linked list so cancel
// and match never need to shift a backing slice.
type Level struct {
	Price decimal.Decimal
	Side  Side

	head  *Order
	tail  *Order
	count int

	// MarketQty is the snap-level extension: aggregate anonymous depth
	// at this price that isn't backed by a live Order the strategy
	// owns. Zero for a plain level.
	MarketQty decimal.Decimal
}

// NewLevel creates an empty level at price for side.
func NewLevel(side Side, price decimal.Decimal) *Level {
	return &Level{Side: side, Price: price}
}

// Add appends order to the tail, preserving time priority. An iceberg
// order (VisibleLimit > 0) is clipped to its visible size first: the
// excess over VisibleLimit is moved into HiddenQty so the level only
// ever carries a displayed remainder in Qty/ExecQty.
func (lv *Level) Add(order *Order) error {
	if order.Side != lv.Side {
		return ErrInvalidSide
	}
	clipToVisible(order)

	order.prev = lv.tail
	order.next = nil
	if lv.tail != nil {
		lv.tail.next = order
	}
	lv.tail = order
	if lv.head == nil {
		lv.head = order
	}
	lv.count++
	return nil
}

// clipToVisible folds everything beyond order's VisibleLimit into
// HiddenQty, a no-op for plain orders and for an iceberg order already
// clipped down to a single display round. Idempotent: calling it again
// once Remaining() <= VisibleLimit does nothing.
func clipToVisible(order *Order) {
	if !order.IsIceberg() {
		return
	}
	excess := order.Remaining().Sub(order.VisibleLimit)
	if excess.Sign() <= 0 {
		return
	}
	order.HiddenQty = order.HiddenQty.Add(excess)
	order.Qty = order.Qty.Sub(excess)
}

// replenish pulls the next display clip out of an iceberg order's
// hidden reserve once its visible remainder has been fully matched.
// Returns false if there is no hidden reserve left (the order is truly
// done).
func replenish(order *Order) bool {
	if order.HiddenQty.Sign() <= 0 {
		return false
	}
	clip := decimal.Min(order.VisibleLimit, order.HiddenQty)
	order.Qty = order.Qty.Add(clip)
	order.HiddenQty = order.HiddenQty.Sub(clip)
	return true
}

// find walks the FIFO chain for id. Levels are small enough in
// practice (bounded by how many strategies rest at one tick) that a
// linear scan beats maintaining a second per-level index.
func (lv *Level) find(orderID string) *Order {
	for o := lv.head; o != nil; o = o.next {
		if o.ID == orderID {
			return o
		}
	}
	return nil
}

// Cancel removes the order with orderID, order-preserving (never
// swap-remove) so FIFO priority among the remaining orders survives
// against future matches at this level.
func (lv *Level) Cancel(orderID string) (*Order, error) {
	order := lv.find(orderID)
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.prev != nil {
		order.prev.next = order.next
	} else {
		lv.head = order.next
	}
	if order.next != nil {
		order.next.prev = order.prev
	} else {
		lv.tail = order.prev
	}
	order.next = nil
	order.prev = nil
	lv.count--

	order.Status = StatusCanceled
	return order, nil
}

// TotalQty sums remaining() across live orders plus MarketQty.
func (lv *Level) TotalQty() decimal.Decimal {
	total := lv.MarketQty
	for o := lv.head; o != nil; o = o.next {
		total = total.Add(o.Remaining())
	}
	return total
}

// Count returns the number of live orders resting at this level.
func (lv *Level) Count() int {
	return lv.count
}

// IsEmpty reports whether the level has no live orders (MarketQty does
// not count — an anonymous-depth-only level is still empty of orders
// the owning side book needs to track for cancel).
func (lv *Level) IsEmpty() bool {
	return lv.head == nil
}

// Match runs the price-time priority matching loop against incoming,
// crediting fills on both sides in FIFO order. The caller guarantees
// incoming.Price is marketable against lv.Price for incoming's side.
// Returns levelBrokenThrough (true if the level was fully consumed),
// the trade snapshots produced (resting-order fills first in FIFO
// order followed by the incoming order's own snapshot), and a
// snapshot per iceberg order that replenished mid-pass and moved to
// the tail.
func (lv *Level) Match(incoming *Order) (levelBrokenThrough bool, trades []*Order, replenished []*Order) {
	trades = make([]*Order, 0, 4)

	resting := lv.head
	for resting != nil && incoming.Remaining().Sign() > 0 {
		take := decimal.Min(incoming.Remaining(), resting.Remaining())
		next := resting.next

		if take.Sign() == 0 {
			resting = next
			continue
		}

		resting.ExecQty = resting.ExecQty.Add(take)
		incoming.ExecQty = incoming.ExecQty.Add(take)

		resting.CurrentExecQty = take
		resting.CurrentExecPrice = lv.Price
		resting.CurrentIsMaker = true

		incoming.CurrentExecQty = incoming.CurrentExecQty.Add(take)
		incoming.CurrentExecPrice = lv.Price
		incoming.CurrentIsMaker = false

		resting.Status = StatusPartiallyFilled
		trades = append(trades, resting.Clone())

		if resting.Remaining().Sign() == 0 {
			if resting.IsIceberg() && replenish(resting) {
				// Visible clip exhausted, hidden reserve remains: the
				// order re-displays a fresh clip but loses time
				// priority, so it moves behind anything resting at
				// the same price.
				lv.removeNode(resting)
				lv.Add(resting)
				replenished = append(replenished, resting.Clone())
			} else {
				resting.Status = StatusFilled
				trades[len(trades)-1] = resting.Clone()
				lv.removeNode(resting)
			}
		}

		resting = next
	}

	levelBrokenThrough = lv.IsEmpty()

	if incoming.Remaining().Sign() == 0 {
		incoming.Status = StatusFilled
	} else {
		incoming.Status = StatusPartiallyFilled
	}
	trades = append(trades, incoming.Clone())

	return levelBrokenThrough, trades, replenished
}

// removeNode unlinks an order already known to be in the chain,
// without the id lookup Cancel needs.
func (lv *Level) removeNode(order *Order) {
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		lv.head = order.next
	}
	if order.next != nil {
		order.next.prev = order.prev
	} else {
		lv.tail = order.prev
	}
	order.next = nil
	order.prev = nil
	lv.count--
}
