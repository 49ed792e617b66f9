package simlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(10001), Bucket(dec("1.00005"), dec("0.0001")))
	assert.Equal(t, int64(3), Bucket(dec("15"), dec("5")))
}

func TestSideBook_BestPriceOrdering(t *testing.T) {
	bids := NewBidBook(dec("1"))
	require.NoError(t, bids.Add(newTestOrder("1", Buy, "10", "1")))
	require.NoError(t, bids.Add(newTestOrder("2", Buy, "12", "1")))
	require.NoError(t, bids.Add(newTestOrder("3", Buy, "11", "1")))

	best, ok := bids.BestPrice(0)
	require.True(t, ok)
	assert.True(t, best.Equal(dec("12")))

	asks := NewAskBook(dec("1"))
	require.NoError(t, asks.Add(newTestOrder("1", Sell, "10", "1")))
	require.NoError(t, asks.Add(newTestOrder("2", Sell, "12", "1")))
	require.NoError(t, asks.Add(newTestOrder("3", Sell, "11", "1")))

	best, ok = asks.BestPrice(0)
	require.True(t, ok)
	assert.True(t, best.Equal(dec("10")))
}

func TestSideBook_CancelDropsEmptyLevel(t *testing.T) {
	sb := NewBidBook(dec("1"))
	require.NoError(t, sb.Add(newTestOrder("1", Buy, "10", "1")))

	_, err := sb.Cancel("1")
	require.NoError(t, err)

	_, ok := sb.BestPrice(0)
	assert.False(t, ok)
	assert.Len(t, sb.levels, 0)
}

func TestSideBook_MatchAcrossLevelsCleansOrdersIndex(t *testing.T) {
	asks := NewAskBook(dec("1"))
	require.NoError(t, asks.Add(newTestOrder("maker1", Sell, "10", "2")))
	require.NoError(t, asks.Add(newTestOrder("maker2", Sell, "11", "3")))

	taker := newTestOrder("taker", Buy, "11", "5")
	trades, replenished := asks.Match(taker)

	require.Len(t, trades, 2)
	assert.Empty(t, replenished)
	assert.True(t, taker.Remaining().Sign() == 0)

	_, err := asks.Cancel("maker1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = asks.Cancel("maker2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSideBook_MarketableDepth(t *testing.T) {
	asks := NewAskBook(dec("1"))
	require.NoError(t, asks.Add(newTestOrder("1", Sell, "10", "2")))
	require.NoError(t, asks.Add(newTestOrder("2", Sell, "11", "3")))
	require.NoError(t, asks.Add(newTestOrder("3", Sell, "12", "4")))

	buyer := newTestOrder("buyer", Buy, "11", "100")
	depth := asks.MarketableDepth(buyer)
	assert.True(t, depth.Equal(dec("5")))
}
