package simlob

import (
	"fmt"

	"github.com/shopspring/decimal"

	"latsim/protocol"
)

// wireSerializer is the Serializer an Envelope is encoded/decoded
// with when the caller doesn't supply its own; swappable via
// EncodeEvent/DecodeEnvelope's explicit parameter for a driver that
// wants a binary format instead of JSON on its persisted event log.
var wireSerializer protocol.Serializer = protocol.DefaultJSONSerializer{}

// SetWireSerializer overrides the default Serializer used by
// EncodeEvent/DecodeEnvelope when the caller omits one.
func SetWireSerializer(s protocol.Serializer) {
	wireSerializer = s
}

// EncodeEvent turns an in-process Event into the wire Envelope a
// backtest driver would persist to a trace file or replay across a
// process boundary: same (finish_time, asset_idx, kind) triple, with
// the payload serialized through ser (or the package default if nil).
func EncodeEvent(ser protocol.Serializer, e Event) (*protocol.Envelope, error) {
	if ser == nil {
		ser = wireSerializer
	}

	payload, err := encodePayload(ser, e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Kind, err)
	}

	return &protocol.Envelope{
		FinishTime: e.FinishTime,
		AssetIdx:   e.AssetIdx,
		Kind:       e.Kind,
		Payload:    payload,
	}, nil
}

func encodePayload(ser protocol.Serializer, e Event) ([]byte, error) {
	switch e.Kind {
	case EventNewOrder:
		p := e.Payload.(NewOrderEvent)
		o := p.Order
		return ser.Marshal(protocol.NewOrderPayload{
			OrderID:       o.ID,
			Side:          protocol.Side(o.Side),
			OrderType:     o.Type,
			TimeInForce:   o.TIF,
			Price:         o.Price.String(),
			Size:          o.Qty.String(),
			UserID:        o.UserID,
			CreateTimeUTC: o.CreateTimeUTC,
		})
	case EventCancel:
		p := e.Payload.(CancelEvent)
		return ser.Marshal(protocol.CancelPayload{OrderID: p.OrderID})
	case EventAmend:
		p := e.Payload.(AmendEvent)
		return ser.Marshal(protocol.AmendPayload{
			OrderID:  p.OrderID,
			NewPrice: p.NewPrice.String(),
			NewSize:  p.NewSize.String(),
		})
	case EventFill:
		p := e.Payload.(FillEvent)
		return ser.Marshal(protocol.FillPayload{
			OrderID:       p.OrderID,
			CounterpartID: p.CounterpartID,
			Side:          protocol.Side(p.Side),
			Price:         p.Price.String(),
			Size:          p.Size.String(),
			IsMaker:       p.IsMaker,
			Status:        p.Status,
		})
	case EventAck:
		p := e.Payload.(AckEvent)
		return ser.Marshal(protocol.AckPayload{OrderID: p.OrderID, Status: p.Status})
	case EventReject:
		p := e.Payload.(RejectEvent)
		return ser.Marshal(protocol.RejectPayload{OrderID: p.OrderID, Reason: p.Reason})
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// DecodeEnvelope reverses EncodeEvent, reconstructing the in-process
// Event from a wire Envelope. Used by a driver replaying a persisted
// trace back into a World via NewOrder-equivalent enqueue calls.
func DecodeEnvelope(ser protocol.Serializer, env *protocol.Envelope) (Event, error) {
	if ser == nil {
		ser = wireSerializer
	}

	e := Event{FinishTime: env.FinishTime, AssetIdx: env.AssetIdx, Kind: env.Kind}

	switch env.Kind {
	case EventNewOrder:
		var p protocol.NewOrderPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return Event{}, fmt.Errorf("decode price: %w", err)
		}
		size, err := decimal.NewFromString(p.Size)
		if err != nil {
			return Event{}, fmt.Errorf("decode size: %w", err)
		}
		e.Payload = NewOrderEvent{Order: &Order{
			ID:            p.OrderID,
			Side:          Side(p.Side),
			Type:          p.OrderType,
			TIF:           p.TimeInForce,
			Price:         price,
			Qty:           size,
			UserID:        p.UserID,
			CreateTimeUTC: p.CreateTimeUTC,
		}}
	case EventCancel:
		var p protocol.CancelPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		e.Payload = CancelEvent{OrderID: p.OrderID}
	case EventAmend:
		var p protocol.AmendPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		newPrice, err := decimal.NewFromString(p.NewPrice)
		if err != nil {
			return Event{}, fmt.Errorf("decode new price: %w", err)
		}
		newSize, err := decimal.NewFromString(p.NewSize)
		if err != nil {
			return Event{}, fmt.Errorf("decode new size: %w", err)
		}
		e.Payload = AmendEvent{OrderID: p.OrderID, NewPrice: newPrice, NewSize: newSize}
	case EventFill:
		var p protocol.FillPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return Event{}, fmt.Errorf("decode price: %w", err)
		}
		size, err := decimal.NewFromString(p.Size)
		if err != nil {
			return Event{}, fmt.Errorf("decode size: %w", err)
		}
		e.Payload = FillEvent{
			OrderID:       p.OrderID,
			CounterpartID: p.CounterpartID,
			Side:          Side(p.Side),
			Price:         price,
			Size:          size,
			IsMaker:       p.IsMaker,
			Status:        p.Status,
		}
	case EventAck:
		var p protocol.AckPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		e.Payload = AckEvent{OrderID: p.OrderID, Status: p.Status}
	case EventReject:
		var p protocol.RejectPayload
		if err := ser.Unmarshal(env.Payload, &p); err != nil {
			return Event{}, err
		}
		e.Payload = RejectEvent{OrderID: p.OrderID, Reason: p.Reason}
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", env.Kind)
	}

	return e, nil
}
