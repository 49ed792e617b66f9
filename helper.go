package simlob

import "github.com/shopspring/decimal"

// DepthChange is the (side, price, size delta) a single BookLog
// implies for a depth view, letting a DepthCache stay in sync with
// the live book without re-walking it on every event.
type DepthChange struct {
	Side     Side
	Price    decimal.Decimal
	SizeDiff decimal.Decimal
}

// CalculateDepthChange derives the depth delta implied by log. Reject
// events never touch book state, so they produce a zero-value change.
func CalculateDepthChange(log *BookLog) DepthChange {
	switch log.Type {
	case LogTypeOpen:
		return DepthChange{Side: log.Side, Price: log.Price, SizeDiff: log.Size}

	case LogTypeCancel:
		return DepthChange{Side: log.Side, Price: log.Price, SizeDiff: log.Size.Neg()}

	case LogTypeMatch:
		// A match drains liquidity from the maker side, which is the
		// opposite of the log's (taker's) side.
		makerSide := Buy
		if log.Side == Buy {
			makerSide = Sell
		}
		return DepthChange{Side: makerSide, Price: log.Price, SizeDiff: log.Size.Neg()}

	case LogTypeAmend:
		// Priority lost (price changed or size increased): the order
		// left OldPrice entirely; the replacement is handled by a
		// subsequent Open or Match log, so only remove the old size.
		if !log.OldPrice.Equal(log.Price) || log.Size.GreaterThan(log.OldSize) {
			return DepthChange{Side: log.Side, Price: log.OldPrice, SizeDiff: log.OldSize.Neg()}
		}
		// Priority kept (same price, size decreased): update in place.
		return DepthChange{Side: log.Side, Price: log.Price, SizeDiff: log.Size.Sub(log.OldSize)}

	default: // LogTypeReject
		return DepthChange{}
	}
}
