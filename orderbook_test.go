package simlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook() *OrderBook {
	return NewOrderBook(BookOptions{TickSize: dec("0.01"), LotSize: dec("1")}, nil)
}

func seedBook(t *testing.T, ob *OrderBook) {
	t.Helper()
	for _, o := range []*Order{
		newTestOrder("buy-1", Buy, "90", "1"),
		newTestOrder("buy-2", Buy, "80", "1"),
		newTestOrder("buy-3", Buy, "70", "1"),
		newTestOrder("sell-1", Sell, "110", "1"),
		newTestOrder("sell-2", Sell, "120", "1"),
		newTestOrder("sell-3", Sell, "130", "1"),
	} {
		_, err := ob.AddOrder(o)
		require.NoError(t, err)
	}
}

func TestOrderBook_RestsWhenNotMarketable(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	bid, ok := ob.Bid(0)
	require.True(t, ok)
	assert.True(t, bid.Equal(dec("90")))

	ask, ok := ob.Ask(0)
	require.True(t, ok)
	assert.True(t, ask.Equal(dec("110")))
}

func TestOrderBook_GTCMatchesThenRests(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("taker", Buy, "125", "3")
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	var matchLogs, openLogs int
	for _, l := range logs {
		switch l.Type {
		case LogTypeMatch:
			matchLogs++
		case LogTypeOpen:
			openLogs++
		}
	}
	assert.Equal(t, 2, matchLogs) // sell-1 then sell-2, sell-3 not marketable at 125
	assert.Equal(t, 1, openLogs)  // residual 1 rests at 125

	ask, ok := ob.Ask(0)
	require.True(t, ok)
	assert.True(t, ask.Equal(dec("130")))
}

func TestOrderBook_GTXRejectsWhenCrossing(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("gtx", Buy, "115", "1")
	taker.TIF = GTX
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.Equal(t, LogTypeReject, logs[0].Type)
	assert.Equal(t, RejectReasonWouldCrossSpread, logs[0].RejectReason)
	assert.Equal(t, StatusRejected, taker.Status)
}

func TestOrderBook_GTXRestsWhenNotCrossing(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("gtx", Buy, "95", "1")
	taker.TIF = GTX
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.Equal(t, LogTypeOpen, logs[0].Type)
}

func TestOrderBook_FOKRejectsWhenInsufficientDepth(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("fok", Buy, "130", "10")
	taker.TIF = FOK
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.Equal(t, LogTypeReject, logs[0].Type)
	assert.Equal(t, RejectReasonInsufficientSize, logs[0].RejectReason)

	// no fills happened: book state unchanged
	ask, ok := ob.Ask(0)
	require.True(t, ok)
	assert.True(t, ask.Equal(dec("110")))
}

func TestOrderBook_FOKFillsFullyWhenDepthSufficient(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("fok", Buy, "120", "2")
	taker.TIF = FOK
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	var matchLogs int
	for _, l := range logs {
		if l.Type == LogTypeMatch {
			matchLogs++
		}
	}
	assert.Equal(t, 2, matchLogs)
	assert.Equal(t, StatusFilled, taker.Status)
}

func TestOrderBook_IOCCancelsResidual(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	taker := newTestOrder("ioc", Buy, "110", "5")
	taker.TIF = IOC
	logs, err := ob.AddOrder(taker)
	require.NoError(t, err)

	var sawCancel bool
	for _, l := range logs {
		if l.Type == LogTypeCancel {
			sawCancel = true
		}
	}
	assert.True(t, sawCancel)
	assert.Equal(t, StatusCanceled, taker.Status)
	assert.True(t, taker.ExecQty.Equal(dec("1")))
}

func TestOrderBook_CancelRemovesRestingOrder(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	order, logs, err := ob.CancelOrder("buy-2")
	require.NoError(t, err)
	assert.Equal(t, "buy-2", order.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, LogTypeCancel, logs[0].Type)

	_, _, err = ob.CancelOrder("buy-2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderBook_AmendSamePriceSmallerSizeKeepsPriority(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	logs, err := ob.AmendOrder("buy-1", dec("90"), dec("0.5"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, LogTypeAmend, logs[0].Type)

	bidQty, ok := ob.BidQty(0)
	require.True(t, ok)
	assert.True(t, bidQty.Equal(dec("0.5")))
}

func TestOrderBook_AmendPriceChangeLosesPriorityAndCanMatch(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	logs, err := ob.AmendOrder("buy-2", dec("115"), dec("1"))
	require.NoError(t, err)

	var sawAmend, sawMatch bool
	for _, l := range logs {
		if l.Type == LogTypeAmend {
			sawAmend = true
		}
		if l.Type == LogTypeMatch {
			sawMatch = true
		}
	}
	assert.True(t, sawAmend)
	assert.True(t, sawMatch)
}

func TestOrderBook_AmendPriceChangeOnPartiallyFilledOrderDoesNotOverCredit(t *testing.T) {
	ob := newTestBook()

	resting := newTestOrder("sell-resting", Sell, "100", "10")
	_, err := ob.AddOrder(resting)
	require.NoError(t, err)

	taker := newTestOrder("buy-taker", Buy, "100", "4")
	_, err = ob.AddOrder(taker)
	require.NoError(t, err)
	require.True(t, resting.ExecQty.Equal(dec("4")))

	// newSize is the order's new TOTAL size (per AmendOrder's contract):
	// 10 total, 4 already executed, 6 should remain after the amend.
	_, err = ob.AmendOrder("sell-resting", dec("99"), dec("10"))
	require.NoError(t, err)

	askQty, ok := ob.AskQty(0)
	require.True(t, ok)
	assert.True(t, askQty.Equal(dec("6")), "expected remaining 6, got %s", askQty)
}

func TestOrderBook_DepthWireReflectsLiveBook(t *testing.T) {
	ob := newTestBook()
	seedBook(t, ob)

	wire := ob.DepthWire(2)
	require.Len(t, wire.Bids, 2)
	require.Len(t, wire.Asks, 2)
	assert.Equal(t, "90", wire.Bids[0].Price)
	assert.Equal(t, "110", wire.Asks[0].Price)
}
