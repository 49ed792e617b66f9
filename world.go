package simlob

import (
	"errors"

	"github.com/shopspring/decimal"
)

// LocalEventHandler is the strategy callback invoked once per
// GotoTime advance with the local-bound events delivered at that
// step. It is opaque to the core: the strategy decides what to do and
// may call World.NewOrder any number of times before the next advance.
type LocalEventHandler func(batch []Event)

// World is the clock. It owns the asset list, one OrderBook per
// asset, and the two directed event pools that carry messages between
// a strategy ("Local") and the venue ("Exchange"). The façades
// described in the design notes as separate Local/Exchange objects
// are collapsed here into plain methods on World — there is no
// back-pointer cycle to manage.
type World struct {
	time          int64
	assets        []Asset
	books         []*OrderBook
	exEP          *EventPool // Local -> Exchange
	localEP       *EventPool // Exchange -> Local
	onLocalEvents LocalEventHandler
}

// NewWorld creates a World with one OrderBook per asset, all starting
// at virtual time zero.
func NewWorld(assets []Asset, onLocalEvents LocalEventHandler) *World {
	books := make([]*OrderBook, len(assets))
	for i, a := range assets {
		books[i] = NewOrderBook(BookOptions{TickSize: a.TickSize, LotSize: a.LotSize}, nil)
	}
	return &World{
		assets:        assets,
		books:         books,
		exEP:          NewEventPool(64),
		localEP:       NewEventPool(64),
		onLocalEvents: onLocalEvents,
	}
}

// Time returns the current virtual time.
func (w *World) Time() int64 {
	return w.time
}

// Version reports the core build identifier a host should stamp onto
// any snapshot or trace file it persists alongside a World, so a
// later replay can tell whether it's reading output from a compatible
// build.
func (w *World) Version() string {
	return CoreVersion
}

// Book returns the order book for assetIdx, for observables that read
// book state directly rather than through the event flow (bid/ask/
// depth and the rest of §6's pure accessors).
func (w *World) Book(assetIdx int) (*OrderBook, error) {
	if assetIdx < 0 || assetIdx >= len(w.books) {
		return nil, ErrInvalidParam
	}
	return w.books[assetIdx], nil
}

// ExEventPoolLen and LocalEventPoolLen expose the two pool lengths,
// used by scenario tests that assert on in-flight event counts (§8,
// S6) without reaching into World's internals.
func (w *World) ExEventPoolLen() int    { return w.exEP.Len() }
func (w *World) LocalEventPoolLen() int { return w.localEP.Len() }

// NewOrder is the Local façade's entry point: stamp the order's
// creation time, compute its exchange-bound delivery time from the
// asset's send delay, and enqueue it.
func (w *World) NewOrder(assetIdx int, o *Order) error {
	if assetIdx < 0 || assetIdx >= len(w.assets) {
		return ErrInvalidParam
	}
	if o.Side != Buy && o.Side != Sell {
		return ErrInvalidSide
	}
	if o.ID == "" {
		o.ID = NewOrderID()
	}

	o.CreateTimeUTC = w.time
	fireTime := w.time + w.assets[assetIdx].Delay.Send

	w.exEP.Add(Event{
		FinishTime: fireTime,
		AssetIdx:   assetIdx,
		Kind:       EventNewOrder,
		Payload:    NewOrderEvent{Order: o},
	})
	return nil
}

// CancelOrder is the Local façade's cancel entry point.
func (w *World) CancelOrder(assetIdx int, orderID string) error {
	if assetIdx < 0 || assetIdx >= len(w.assets) {
		return ErrInvalidParam
	}
	fireTime := w.time + w.assets[assetIdx].Delay.Send
	w.exEP.Add(Event{
		FinishTime: fireTime,
		AssetIdx:   assetIdx,
		Kind:       EventCancel,
		Payload:    CancelEvent{OrderID: orderID},
	})
	return nil
}

// AmendOrder is the Local façade's amend entry point.
func (w *World) AmendOrder(assetIdx int, orderID string, newPrice, newSize decimal.Decimal) error {
	if assetIdx < 0 || assetIdx >= len(w.assets) {
		return ErrInvalidParam
	}
	fireTime := w.time + w.assets[assetIdx].Delay.Send
	w.exEP.Add(Event{
		FinishTime: fireTime,
		AssetIdx:   assetIdx,
		Kind:       EventAmend,
		Payload:    AmendEvent{OrderID: orderID, NewPrice: newPrice, NewSize: newSize},
	})
	return nil
}

// GotoTime advances the clock. With t == nil it computes the minimum
// of the two pools' earliest times (no-op if both are empty);
// otherwise it advances to the given t. Either way it drains both
// pools up to the target and hands each batch to the corresponding
// façade, Exchange first so same-timestamp strategy-to-exchange
// causality holds, then Local. world.time equals the target when this
// returns.
func (w *World) GotoTime(t *int64) {
	var target int64
	if t == nil {
		exEarliest, exOk := w.exEP.Earliest()
		localEarliest, localOk := w.localEP.Earliest()
		switch {
		case !exOk && !localOk:
			return
		case !exOk:
			target = localEarliest
		case !localOk:
			target = exEarliest
		case exEarliest < localEarliest:
			target = exEarliest
		default:
			target = localEarliest
		}
	} else {
		target = *t
	}

	// world.time is monotonically non-decreasing across every public
	// operation; a target behind the current time is a caller error,
	// clamped rather than allowed to run the clock backward.
	if target < w.time {
		target = w.time
	}

	exBatch := w.exEP.DrainUntil(target)
	localBatch := w.localEP.DrainUntil(target)

	w.time = target
	logger.Debug("world advanced", "time", target, "exchange_events", len(exBatch), "local_events", len(localBatch))

	w.processExchangeEvents(exBatch)
	w.processLocalEvents(localBatch)
}

// processExchangeEvents is the Exchange façade: dispatch each event by
// kind, run it against the asset's order book, and turn every
// resulting BookLog into a local-bound event delivered at
// time + receive_delay.
func (w *World) processExchangeEvents(batch []Event) {
	for _, e := range batch {
		book := w.books[e.AssetIdx]

		var (
			logs    []*BookLog
			orderID string
			err     error
		)
		switch e.Kind {
		case EventNewOrder:
			p := e.Payload.(NewOrderEvent)
			orderID = p.Order.ID
			logs, err = book.AddOrder(p.Order)
		case EventCancel:
			p := e.Payload.(CancelEvent)
			orderID = p.OrderID
			_, logs, err = book.CancelOrder(p.OrderID)
		case EventAmend:
			p := e.Payload.(AmendEvent)
			orderID = p.OrderID
			logs, err = book.AmendOrder(p.OrderID, p.NewPrice, p.NewSize)
		default:
			continue
		}

		// A core-level error (bad side, bad price, unknown id) never
		// touches book state, so there is no BookLog to replay — tell
		// the strategy directly instead of dropping the event.
		if err != nil {
			w.localEP.Add(Event{
				FinishTime: w.time + w.assets[e.AssetIdx].Delay.Receive,
				AssetIdx:   e.AssetIdx,
				Kind:       EventReject,
				Payload:    RejectEvent{OrderID: orderID, Reason: rejectReasonFor(err)},
			})
			continue
		}

		w.emitLocalEvents(e.AssetIdx, logs)
	}
}

// rejectReasonFor maps a core-level error from the order book to the
// wire-level reason code delivered to the strategy.
func rejectReasonFor(err error) RejectReason {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return RejectReasonOrderNotFound
	case errors.Is(err, ErrInvalidSide):
		return RejectReasonInvalidSide
	case errors.Is(err, ErrInvalidPrice):
		return RejectReasonInvalidPrice
	default:
		return RejectReasonNone
	}
}

// emitLocalEvents converts the BookLogs one order-book call produced
// into local-bound wire events and enqueues them at
// time + receive_delay.
func (w *World) emitLocalEvents(assetIdx int, logs []*BookLog) {
	fireTime := w.time + w.assets[assetIdx].Delay.Receive

	for _, log := range logs {
		switch log.Type {
		case LogTypeOpen:
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventAck,
				Payload: AckEvent{OrderID: log.OrderID, Status: StatusNew}})
		case LogTypeCancel:
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventAck,
				Payload: AckEvent{OrderID: log.OrderID, Status: StatusCanceled}})
		case LogTypeAmend:
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventAck,
				Payload: AckEvent{OrderID: log.OrderID, Status: StatusNew}})
		case LogTypeReject:
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventReject,
				Payload: RejectEvent{OrderID: log.OrderID, Reason: log.RejectReason}})
		case LogTypeMatch:
			makerSide := Sell
			if log.Side == Sell {
				makerSide = Buy
			}
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventFill,
				Payload: FillEvent{
					OrderID:       log.OrderID,
					CounterpartID: log.MakerOrderID,
					Side:          log.Side,
					Price:         log.Price,
					Size:          log.Size,
					IsMaker:       false,
					Status:        log.Status,
				}})
			w.localEP.Add(Event{FinishTime: fireTime, AssetIdx: assetIdx, Kind: EventFill,
				Payload: FillEvent{
					OrderID:       log.MakerOrderID,
					CounterpartID: log.OrderID,
					Side:          makerSide,
					Price:         log.Price,
					Size:          log.Size,
					IsMaker:       true,
					Status:        log.MakerStatus,
				}})
		}
	}
}

// processLocalEvents is the Local façade: hand the batch to whatever
// strategy callback the host installed. Control flow between
// GotoTime calls belongs to the host, not the core.
func (w *World) processLocalEvents(batch []Event) {
	if w.onLocalEvents == nil || len(batch) == 0 {
		return
	}
	w.onLocalEvents(batch)
}
