package simlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIcebergOrder(id string, side Side, price, totalQty, visibleLimit string) *Order {
	o := newTestOrder(id, side, price, totalQty)
	o.VisibleLimit = dec(visibleLimit)
	return o
}

func TestIceberg_RestsWithOnlyVisibleClipDisplayed(t *testing.T) {
	ob := newTestBook()

	_, err := ob.AddOrder(newIcebergOrder("ice-1", Sell, "100", "100", "10"))
	require.NoError(t, err)

	askQty, ok := ob.AskQty(0)
	require.True(t, ok)
	assert.True(t, askQty.Equal(dec("10")), "displayed qty should be the visible clip, got %s", askQty)
}

func TestIceberg_ReplenishesAfterVisibleExhausted(t *testing.T) {
	ob := newTestBook()
	log := NewMemoryPublishLog()
	ob.log = log

	_, err := ob.AddOrder(newIcebergOrder("ice-1", Sell, "100", "100", "10"))
	require.NoError(t, err)

	_, err = ob.AddOrder(newTestOrder("taker-1", Buy, "100", "10"))
	require.NoError(t, err)

	askQty, ok := ob.AskQty(0)
	require.True(t, ok)
	assert.True(t, askQty.Equal(dec("10")), "should have replenished back to a full clip, got %s", askQty)

	var matched, replenishedOpen int
	for _, l := range log.Logs() {
		if l.Type == LogTypeMatch && l.MakerOrderID == "ice-1" {
			matched++
		}
		if l.Type == LogTypeOpen && l.OrderID == "ice-1" {
			replenishedOpen++
		}
	}
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, replenishedOpen, "one open on placement, one on replenishment")
}

func TestIceberg_PartialFillOfClipDoesNotReplenish(t *testing.T) {
	ob := newTestBook()
	log := NewMemoryPublishLog()
	ob.log = log

	_, err := ob.AddOrder(newIcebergOrder("ice-1", Sell, "100", "60", "10"))
	require.NoError(t, err)

	_, err = ob.AddOrder(newTestOrder("taker-1", Buy, "100", "5"))
	require.NoError(t, err)

	askQty, ok := ob.AskQty(0)
	require.True(t, ok)
	assert.True(t, askQty.Equal(dec("5")), "partial fill of the visible clip should not replenish, got %s", askQty)

	opens := 0
	for _, l := range log.Logs() {
		if l.Type == LogTypeOpen && l.OrderID == "ice-1" {
			opens++
		}
	}
	assert.Equal(t, 1, opens)
}

func TestIceberg_ReplenishmentLosesTimePriority(t *testing.T) {
	ob := newTestBook()
	log := NewMemoryPublishLog()
	ob.log = log

	_, err := ob.AddOrder(newIcebergOrder("ice-1", Sell, "100", "100", "10"))
	require.NoError(t, err)
	_, err = ob.AddOrder(newTestOrder("norm-1", Sell, "100", "10"))
	require.NoError(t, err)

	askQty, ok := ob.AskQty(0)
	require.True(t, ok)
	assert.True(t, askQty.Equal(dec("20")))

	// Exhausts ice-1's visible clip; it replenishes and moves behind norm-1.
	_, err = ob.AddOrder(newTestOrder("taker-1", Buy, "100", "10"))
	require.NoError(t, err)

	// This should now match norm-1, not the replenished ice-1.
	_, err = ob.AddOrder(newTestOrder("taker-2", Buy, "100", "10"))
	require.NoError(t, err)

	var matchedNorm bool
	for _, l := range log.Logs() {
		if l.Type == LogTypeMatch && l.MakerOrderID == "norm-1" && l.OrderID == "taker-2" {
			matchedNorm = true
		}
	}
	assert.True(t, matchedNorm, "second taker should match the normal order ahead of the replenished iceberg")
}

func TestIceberg_TakerUsesFullSizeNotJustVisibleLimit(t *testing.T) {
	ob := newTestBook()

	for i, id := range []string{"sell-a", "sell-b", "sell-c", "sell-d"} {
		_, err := ob.AddOrder(newTestOrder(id, Sell, "100", "20"))
		require.NoError(t, err)
		_ = i
	}

	iceBuyer := newIcebergOrder("ice-buyer", Buy, "100", "80", "10")
	_, err := ob.AddOrder(iceBuyer)
	require.NoError(t, err)

	assert.True(t, iceBuyer.Remaining().Sign() == 0, "iceberg taker should match its full size, not just VisibleLimit")
	_, resting := ob.bids.orders["ice-buyer"]
	assert.False(t, resting, "fully filled iceberg taker should not rest")
}

func TestIceberg_AmendShrinkFromHiddenKeepsPriority(t *testing.T) {
	ob := newTestBook()

	_, err := ob.AddOrder(newIcebergOrder("ice-1", Sell, "100", "100", "10"))
	require.NoError(t, err)
	_, err = ob.AddOrder(newTestOrder("norm-1", Sell, "100", "10"))
	require.NoError(t, err)

	_, err = ob.AmendOrder("ice-1", dec("100"), dec("50"))
	require.NoError(t, err)

	_, err = ob.AddOrder(newTestOrder("taker-1", Buy, "100", "5"))
	require.NoError(t, err)

	order := ob.asks.levels[Bucket(dec("100"), ob.opts.TickSize)].find("ice-1")
	require.NotNil(t, order, "ice-1 should still be resting ahead of norm-1 after a size-only amend")
	assert.Equal(t, "ice-1", ob.asks.levels[Bucket(dec("100"), ob.opts.TickSize)].head.ID, "taker-1 should have filled against ice-1, which stays first in the queue")
}
