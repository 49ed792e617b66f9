package protocol

import "encoding/json"

// Serializer defines the contract for serializing and deserializing
// Envelope payloads. This lets a backtest driver swap in a faster wire
// format without touching the core.
type Serializer interface {
	// Marshal serializes a Go struct (e.g. NewOrderPayload) into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a Go struct.
	// v must be a pointer to the target struct.
	Unmarshal(data []byte, v any) error
}

// DefaultJSONSerializer is the Serializer the core's event encoder
// uses when the caller supplies none.
type DefaultJSONSerializer struct{}

func (DefaultJSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (DefaultJSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
