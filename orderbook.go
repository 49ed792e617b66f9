package simlob

import (
	"github.com/shopspring/decimal"

	"latsim/protocol"
)

// BookOptions configures an OrderBook at construction; immutable
// thereafter.
type BookOptions struct {
	TickSize decimal.Decimal
	LotSize  decimal.Decimal
}

// OrderBook composes a bid and an ask SideBook plus the shared
// tick/lot configuration, and enforces time-in-force policy on the
// boundary between matching and resting.
type OrderBook struct {
	opts BookOptions
	bids *SideBook
	asks *SideBook

	seqID   uint64
	tradeID uint64
	log     PublishLog

	// pending accumulates the logs produced by the call in progress, so
	// AddOrder/CancelOrder/AmendOrder can hand World exactly what
	// happened for that one call instead of forcing it to filter the
	// audit stream by sequence id.
	pending []*BookLog
}

// NewOrderBook creates an empty order book for one asset.
func NewOrderBook(opts BookOptions, log PublishLog) *OrderBook {
	if log == nil {
		log = NewDiscardPublishLog()
	}
	return &OrderBook{
		opts: opts,
		bids: NewBidBook(opts.TickSize),
		asks: NewAskBook(opts.TickSize),
		log:  log,
	}
}

func (ob *OrderBook) sideBooks(side Side) (own, opposite *SideBook) {
	if side == Buy {
		return ob.bids, ob.asks
	}
	return ob.asks, ob.bids
}

// AddOrder routes o to the side book matching o.Side and runs the
// full match-then-rest pipeline. Fails InvalidSide on SideNone. Returns
// the logs this call produced (reject, or open/match/cancel), for a
// caller that needs to react to the outcome rather than replay the
// audit stream.
func (ob *OrderBook) AddOrder(o *Order) ([]*BookLog, error) {
	if o.Side != Buy && o.Side != Sell {
		return nil, ErrInvalidSide
	}
	if o.Type == Limit && o.Price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	ob.pending = ob.pending[:0]
	ob.matchOrRest(o)
	return ob.pending, nil
}

// matchOrRest implements §4.4: match against the opposite side first,
// then decide whether the residual rests, is canceled (ioc), or the
// whole order is rejected before any fill (fok, gtx).
func (ob *OrderBook) matchOrRest(o *Order) {
	own, opposite := ob.sideBooks(o.Side)

	if o.TIF == GTX {
		if ob.wouldCross(o, opposite) {
			ob.reject(o, RejectReasonWouldCrossSpread)
			return
		}
	}

	if o.TIF == FOK {
		if opposite.MarketableDepth(o).LessThan(o.Qty) {
			ob.reject(o, RejectReasonInsufficientSize)
			return
		}
	}

	trades, replenished := opposite.Match(o)
	ob.publishTrades(o, trades)
	ob.publishReplenish(replenished)

	if o.Remaining().Sign() == 0 {
		return
	}

	switch o.TIF {
	case IOC, FOK:
		o.Status = StatusCanceled
		ob.publishCancel(o)
		return
	default: // GTC, GTX
		if o.Type == Market {
			// A market order that could not be fully filled has
			// nothing left to rest at — there is no price to rest it.
			o.Status = StatusPartiallyFilled
			ob.publishCancel(o)
			return
		}
		if err := own.Add(o); err != nil {
			ob.reject(o, RejectReasonInvalidSide)
			return
		}
		o.Status = StatusNew
		ob.publishOpen(o)
	}
}

// wouldCross reports whether o (about to rest on its own side) would
// immediately match against opposite's best price — checked before
// calling Match so a gtx order never touches the book.
func (ob *OrderBook) wouldCross(o *Order, opposite *SideBook) bool {
	best, ok := opposite.BestPrice(0)
	if !ok {
		return false
	}
	return opposite.marketable(o, best)
}

// CancelOrder removes id from whichever side book holds it, returning
// the logs this call produced alongside the canceled order.
func (ob *OrderBook) CancelOrder(id string) (*Order, []*BookLog, error) {
	ob.pending = ob.pending[:0]

	order, err := ob.bids.Cancel(id)
	if err == nil {
		ob.publishCancel(order)
		return order, ob.pending, nil
	}
	order, err = ob.asks.Cancel(id)
	if err != nil {
		return nil, nil, ErrOrderNotFound
	}
	ob.publishCancel(order)
	return order, ob.pending, nil
}

// AmendOrder changes price and/or size on a resting order. A price
// change or size increase loses time priority (cancel, re-add,
// re-match); a size decrease at the same price keeps priority.
func (ob *OrderBook) AmendOrder(id string, newPrice, newSize decimal.Decimal) ([]*BookLog, error) {
	ob.pending = ob.pending[:0]

	own, _ := ob.locate(id)
	if own == nil {
		return nil, ErrOrderNotFound
	}

	bucket := own.orders[id]
	lv := own.levels[bucket]
	order := lv.find(id)
	if order == nil {
		return nil, ErrOrderNotFound
	}

	// newSize is always the order's new TOTAL size, including anything
	// already executed (visible + hidden for an iceberg order,
	// indistinguishable from Qty for a plain one).
	oldPrice, oldSize := order.Price, order.Remaining()
	oldTotal := order.Qty.Add(order.HiddenQty)
	priorityLost := !oldPrice.Equal(newPrice) || newSize.GreaterThan(oldTotal)

	if priorityLost {
		if _, err := own.Cancel(id); err != nil {
			return nil, err
		}
		order.Price = newPrice
		order.Qty = newSize
		order.HiddenQty = decimal.Zero
		ob.publishAmend(order, oldPrice, oldSize)
		ob.matchOrRest(order) // re-rests via Level.Add, which re-clips to VisibleLimit
		return ob.pending, nil
	}

	// Same price, total size did not increase: priority is kept. A
	// shrink comes out of the hidden reserve first, so the currently
	// displayed clip stays undisturbed.
	if order.IsIceberg() {
		newHidden := newSize.Sub(order.Qty)
		if newHidden.Sign() < 0 {
			newHidden = decimal.Zero
			order.Qty = newSize
		}
		order.HiddenQty = newHidden
	} else {
		order.Qty = newSize
	}
	ob.publishAmend(order, oldPrice, oldSize)
	return ob.pending, nil
}

func (ob *OrderBook) locate(id string) (own *SideBook, order *Order) {
	if bucket, ok := ob.bids.orders[id]; ok {
		return ob.bids, ob.bids.levels[bucket].find(id)
	}
	if bucket, ok := ob.asks.orders[id]; ok {
		return ob.asks, ob.asks.levels[bucket].find(id)
	}
	return nil, nil
}

// Bid returns the n-th best bid price.
func (ob *OrderBook) Bid(n int) (decimal.Decimal, bool) { return ob.bids.BestPrice(n) }

// Ask returns the n-th best ask price.
func (ob *OrderBook) Ask(n int) (decimal.Decimal, bool) { return ob.asks.BestPrice(n) }

// BidQty returns the n-th best bid level's total quantity.
func (ob *OrderBook) BidQty(n int) (decimal.Decimal, bool) { return ob.bids.BestQty(n) }

// AskQty returns the n-th best ask level's total quantity.
func (ob *OrderBook) AskQty(n int) (decimal.Decimal, bool) { return ob.asks.BestQty(n) }

// Depth returns up to limit levels on each side, best first.
func (ob *OrderBook) Depth(limit int) (bids, asks []DepthLevel) {
	return ob.bids.Depth(limit), ob.asks.Depth(limit)
}

// DepthWire builds the wire-shaped depth snapshot (prices/sizes as
// strings) a backtest driver would hand to a dashboard or replay
// consumer over a process boundary, keyed by the book's own sequence
// counter so a consumer can detect a stale read against a later one.
func (ob *OrderBook) DepthWire(limit int) *protocol.GetDepthResponse {
	bids, asks := ob.Depth(limit)
	resp := &protocol.GetDepthResponse{
		UpdateID: ob.seqID,
		Bids:     make([]*protocol.DepthItem, len(bids)),
		Asks:     make([]*protocol.DepthItem, len(asks)),
	}
	for i, lv := range bids {
		resp.Bids[i] = &protocol.DepthItem{Price: lv.Price.String(), Size: lv.Qty.String()}
	}
	for i, lv := range asks {
		resp.Asks[i] = &protocol.DepthItem{Price: lv.Price.String(), Size: lv.Qty.String()}
	}
	return resp
}

// Spread returns ask(0) - bid(0), or (zero, false) if either side is
// empty.
func (ob *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, ok := ob.bids.BestPrice(0)
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := ob.asks.BestPrice(0)
	if !ok {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

// MidPrice returns (ask(0)+bid(0))/2, or (zero, false) if either side
// is empty.
func (ob *OrderBook) MidPrice() (decimal.Decimal, bool) {
	bid, ok := ob.bids.BestPrice(0)
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := ob.asks.BestPrice(0)
	if !ok {
		return decimal.Zero, false
	}
	return ask.Add(bid).Div(decimal.NewFromInt(2)), true
}

func (ob *OrderBook) reject(o *Order, reason RejectReason) {
	o.Status = StatusRejected
	logger.Debug("order rejected", "order_id", o.ID, "reason", string(reason))
	log := acquireBookLog()
	log.SequenceID = ob.nextSeq()
	log.Type = LogTypeReject
	log.Side = o.Side
	log.Price = o.Price
	log.Size = o.Qty
	log.OrderID = o.ID
	log.UserID = o.UserID
	log.OrderType = o.Type
	log.RejectReason = reason
	ob.log.Publish(log)
	ob.pending = append(ob.pending, cloneLog(log))
	releaseBookLog(log)
}

func (ob *OrderBook) publishOpen(o *Order) {
	log := acquireBookLog()
	log.SequenceID = ob.nextSeq()
	log.Type = LogTypeOpen
	log.Side = o.Side
	log.Price = o.Price
	log.Size = o.Remaining()
	log.OrderID = o.ID
	log.UserID = o.UserID
	log.OrderType = o.Type
	ob.log.Publish(log)
	ob.pending = append(ob.pending, cloneLog(log))
	releaseBookLog(log)
}

func (ob *OrderBook) publishCancel(o *Order) {
	log := acquireBookLog()
	log.SequenceID = ob.nextSeq()
	log.Type = LogTypeCancel
	log.Side = o.Side
	log.Price = o.Price
	log.Size = o.Remaining()
	log.OrderID = o.ID
	log.UserID = o.UserID
	log.OrderType = o.Type
	ob.log.Publish(log)
	ob.pending = append(ob.pending, cloneLog(log))
	releaseBookLog(log)
}

func (ob *OrderBook) publishAmend(o *Order, oldPrice, oldSize decimal.Decimal) {
	log := acquireBookLog()
	log.SequenceID = ob.nextSeq()
	log.Type = LogTypeAmend
	log.Side = o.Side
	log.Price = o.Price
	log.Size = o.Remaining()
	log.OldPrice = oldPrice
	log.OldSize = oldSize
	log.OrderID = o.ID
	log.UserID = o.UserID
	log.OrderType = o.Type
	ob.log.Publish(log)
	ob.pending = append(ob.pending, cloneLog(log))
	releaseBookLog(log)
}

// publishReplenish emits an Open log for each iceberg order that
// pulled a fresh display clip from its hidden reserve during a match
// pass, mirroring how AddOrder announces an order's initial visible
// size.
func (ob *OrderBook) publishReplenish(orders []*Order) {
	for _, o := range orders {
		ob.publishOpen(o)
	}
}

// publishTrades emits one match log per resting-order fill, in the FIFO
// order Level.Match produced them. trades holds only maker snapshots —
// SideBook.Match drops each level's per-pass taker snapshot since only
// the final one (taker, here) reflects its true post-match status.
func (ob *OrderBook) publishTrades(taker *Order, trades []*Order) {
	for _, t := range trades {
		log := acquireBookLog()
		log.SequenceID = ob.nextSeq()
		log.TradeID = ob.nextTradeID()
		log.Type = LogTypeMatch
		log.Side = taker.Side
		log.Price = t.CurrentExecPrice
		log.Size = t.CurrentExecQty
		log.Amount = t.CurrentExecPrice.Mul(t.CurrentExecQty)
		log.OrderID = taker.ID
		log.UserID = taker.UserID
		log.OrderType = taker.Type
		log.Status = taker.Status
		log.MakerOrderID = t.ID
		log.MakerUserID = t.UserID
		log.MakerStatus = t.Status
		ob.log.Publish(log)
		ob.pending = append(ob.pending, cloneLog(log))
		releaseBookLog(log)
	}
}

// cloneLog copies a pooled BookLog so it can outlive releaseBookLog.
func cloneLog(log *BookLog) *BookLog {
	cp := new(BookLog)
	*cp = *log
	return cp
}

func (ob *OrderBook) nextSeq() uint64 {
	ob.seqID++
	return ob.seqID
}

func (ob *OrderBook) nextTradeID() uint64 {
	ob.tradeID++
	return ob.tradeID
}
