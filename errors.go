package simlob

import "errors"

// Sentinel errors surfaced by the core, per the error taxonomy in §7.
var (
	// ErrOrderNotFound is returned when a cancel or amend targets an id
	// that is not resting at a level or side book.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidSide is returned when an order with Side none is
	// submitted, or an order is added to a level/side book it doesn't
	// belong to.
	ErrInvalidSide = errors.New("invalid order side")

	// ErrInsufficientDepth names the FOK under-depth case. OrderBook does
	// not return it: a FOK order that cannot be fully filled is rejected
	// in-band (StatusRejected plus a reject log with
	// RejectReasonInsufficientSize) before any fill is committed.
	ErrInsufficientDepth = errors.New("insufficient depth to fill order")

	// ErrInvalidPrice is returned by OrderBook.AddOrder for a limit order
	// whose price is zero or negative. Prices are not checked against
	// tick_size.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidParam covers malformed input that isn't one of the
	// above domain errors, such as an asset index out of range.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrInternal covers invariant violations that should never happen
	// in correct code; surfaced instead of panicking where a caller can
	// reasonably be expected to handle it.
	ErrInternal = errors.New("internal error")
)
