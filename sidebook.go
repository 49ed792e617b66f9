package simlob

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// Bucket discretises a price into the integer key every ordered
// structure in this package actually keys on, eliminating float
// equality hazards. round(price/tick_size), banker's-rounding-free:
// decimal.Round uses half-away-from-zero, matching the spec's plain
// "round" with no further qualification.
func Bucket(price, tickSize decimal.Decimal) int64 {
	if tickSize.Sign() == 0 {
		return price.IntPart()
	}
	return price.Div(tickSize).Round(0).IntPart()
}

// SideBook is one side (bid or ask) of an order book: levels keyed by
// price bucket, kept in an ordered set so index 0 is always the best
// price — descending for buys, ascending for asks.
type SideBook struct {
	side     Side
	tickSize decimal.Decimal

	levels    map[int64]*Level
	depthList *skiplist.SkipList
	orders    map[string]int64 // order id -> price bucket, for O(1) cancel lookup
}

// NewBidBook creates a side book ordered highest price first.
func NewBidBook(tickSize decimal.Decimal) *SideBook {
	return newSideBook(Buy, tickSize, skiplist.GreaterThanFunc(func(lhs, rhs any) int {
		a, b := lhs.(int64), rhs.(int64)
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	}))
}

// NewAskBook creates a side book ordered lowest price first.
func NewAskBook(tickSize decimal.Decimal) *SideBook {
	return newSideBook(Sell, tickSize, skiplist.GreaterThanFunc(func(lhs, rhs any) int {
		a, b := lhs.(int64), rhs.(int64)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}))
}

func newSideBook(side Side, tickSize decimal.Decimal, comparator skiplist.Comparable) *SideBook {
	return &SideBook{
		side:      side,
		tickSize:  tickSize,
		levels:    make(map[int64]*Level),
		depthList: skiplist.New(comparator),
		orders:    make(map[string]int64),
	}
}

// GetOrCreateLevel returns the level at price, creating and inserting
// it into the ordered set if absent.
func (sb *SideBook) GetOrCreateLevel(price decimal.Decimal) *Level {
	bucket := Bucket(price, sb.tickSize)
	if lv, ok := sb.levels[bucket]; ok {
		return lv
	}
	lv := NewLevel(sb.side, price)
	sb.levels[bucket] = lv
	sb.depthList.Set(bucket, lv)
	return lv
}

// Add inserts order into its price level, creating the level if
// needed, and records the order's bucket for cancel.
func (sb *SideBook) Add(order *Order) error {
	if order.Side != sb.side {
		return ErrInvalidSide
	}
	lv := sb.GetOrCreateLevel(order.Price)
	wasEmpty := lv.IsEmpty()
	if err := lv.Add(order); err != nil {
		return err
	}
	if wasEmpty {
		logger.Debug("level opened", "side", order.Side.String(), "price", order.Price.String())
	}
	sb.orders[order.ID] = Bucket(order.Price, sb.tickSize)
	return nil
}

// Cancel removes order id from wherever it rests, dropping the level
// from both the map and the ordered set if it becomes empty.
func (sb *SideBook) Cancel(orderID string) (*Order, error) {
	bucket, ok := sb.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	lv := sb.levels[bucket]
	order, err := lv.Cancel(orderID)
	if err != nil {
		return nil, err
	}
	delete(sb.orders, orderID)
	if lv.IsEmpty() {
		delete(sb.levels, bucket)
		sb.depthList.Remove(bucket)
		logger.Debug("level closed", "side", sb.side.String(), "price", lv.Price.String())
	}
	return order, nil
}

// BestPrice returns the n-th best level's price, or (zero, false) if
// there is no such level.
func (sb *SideBook) BestPrice(n int) (decimal.Decimal, bool) {
	lv, ok := sb.levelAt(n)
	if !ok {
		return decimal.Zero, false
	}
	return lv.Price, true
}

// BestQty returns the n-th best level's total quantity, or (zero,
// false) if there is no such level.
func (sb *SideBook) BestQty(n int) (decimal.Decimal, bool) {
	lv, ok := sb.levelAt(n)
	if !ok {
		return decimal.Zero, false
	}
	return lv.TotalQty(), true
}

func (sb *SideBook) levelAt(n int) (*Level, bool) {
	el := sb.depthList.Front()
	for i := 0; i < n && el != nil; i++ {
		el = el.Next()
	}
	if el == nil {
		return nil, false
	}
	return el.Value.(*Level), true
}

// Depth returns up to limit levels, best first, as (price, qty) pairs.
func (sb *SideBook) Depth(limit int) []DepthLevel {
	out := make([]DepthLevel, 0, limit)
	el := sb.depthList.Front()
	for i := 0; i < limit && el != nil; i++ {
		lv := el.Value.(*Level)
		out = append(out, DepthLevel{Price: lv.Price, Qty: lv.TotalQty()})
		el = el.Next()
	}
	return out
}

// DepthLevel is one row of a Depth() snapshot.
type DepthLevel struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// marketable reports whether incoming (from the opposite side) can
// trade against price on this side. Market orders are infinitely
// marketable.
func (sb *SideBook) marketable(incoming *Order, price decimal.Decimal) bool {
	if incoming.Type == Market {
		return true
	}
	if incoming.Side == Buy {
		return price.LessThanOrEqual(incoming.Price)
	}
	return price.GreaterThanOrEqual(incoming.Price)
}

// MarketableDepth sums the total quantity resting at prices marketable
// against incoming, used by FOK's pre-match sufficiency check. It never
// mutates the book.
func (sb *SideBook) MarketableDepth(incoming *Order) decimal.Decimal {
	total := decimal.Zero
	el := sb.depthList.Front()
	for el != nil {
		lv := el.Value.(*Level)
		if !sb.marketable(incoming, lv.Price) {
			break
		}
		total = total.Add(lv.TotalQty())
		el = el.Next()
	}
	return total
}

// Match walks levels best-first, matching incoming against each while
// it remains marketable and incoming still has quantity, removing any
// level fully consumed. Returns the aggregated trades across levels
// plus any iceberg orders that replenished a fresh display clip
// mid-pass.
func (sb *SideBook) Match(incoming *Order) (trades []*Order, replenished []*Order) {
	trades = make([]*Order, 0, 4)
	incoming.CurrentExecQty = decimal.Zero

	for incoming.Remaining().Sign() > 0 {
		el := sb.depthList.Front()
		if el == nil {
			break
		}
		lv := el.Value.(*Level)
		if !sb.marketable(incoming, lv.Price) {
			break
		}

		_, levelTrades, levelReplenished := lv.Match(incoming)
		restingTrades := levelTrades[:len(levelTrades)-1]
		trades = append(trades, restingTrades...)
		replenished = append(replenished, levelReplenished...)

		for _, t := range restingTrades {
			if t.Status == StatusFilled {
				delete(sb.orders, t.ID)
			}
		}

		if lv.IsEmpty() {
			bucket := Bucket(lv.Price, sb.tickSize)
			delete(sb.levels, bucket)
			sb.depthList.Remove(bucket)
			logger.Debug("level closed", "side", sb.side.String(), "price", lv.Price.String())
		}
	}

	return trades, replenished
}
