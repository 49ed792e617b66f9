package simlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latsim/protocol"
)

func TestWire_NewOrderRoundTrips(t *testing.T) {
	o := newTestOrder("ord-1", Buy, "100.50", "3")
	o.UserID = 7
	o.CreateTimeUTC = 42
	e := Event{FinishTime: 99, AssetIdx: 1, Kind: EventNewOrder, Payload: NewOrderEvent{Order: o}}

	env, err := EncodeEvent(nil, e)
	require.NoError(t, err)
	assert.Equal(t, int64(99), env.FinishTime)
	assert.Equal(t, EventNewOrder, env.Kind)

	decoded, err := DecodeEnvelope(nil, env)
	require.NoError(t, err)
	p, ok := decoded.Payload.(NewOrderEvent)
	require.True(t, ok)
	assert.Equal(t, "ord-1", p.Order.ID)
	assert.True(t, p.Order.Price.Equal(dec("100.50")))
	assert.True(t, p.Order.Qty.Equal(dec("3")))
	assert.Equal(t, uint64(7), p.Order.UserID)
}

func TestWire_FillEventRoundTripsThroughJSONSerializer(t *testing.T) {
	e := Event{
		FinishTime: 5,
		AssetIdx:   0,
		Kind:       EventFill,
		Payload: FillEvent{
			OrderID:       "a",
			CounterpartID: "b",
			Side:          Sell,
			Price:         dec("10"),
			Size:          dec("2"),
			IsMaker:       true,
			Status:        StatusPartiallyFilled,
		},
	}

	env, err := EncodeEvent(protocol.DefaultJSONSerializer{}, e)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(protocol.DefaultJSONSerializer{}, env)
	require.NoError(t, err)
	fill := decoded.Payload.(FillEvent)
	assert.Equal(t, "a", fill.OrderID)
	assert.True(t, fill.Price.Equal(dec("10")))
	assert.Equal(t, StatusPartiallyFilled, fill.Status)
}
