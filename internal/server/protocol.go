package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/fairline/internal/core/quoting"
)

// Envelope types.
const (
	TypeSheet = "sheet"
	TypeError = "error"
)

// PriceRequest is one inbound frame on /ws.
type PriceRequest struct {
	ID      string          `json:"id,omitempty" validate:"omitempty,max=128"`
	Fixture quoting.Fixture `json:"fixture" validate:"required"`
}

// Envelope is the wire format for replies sent over the pricing WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// ErrorPayload is the payload of a TypeError envelope.
type ErrorPayload struct {
	Error string `json:"error"`
}

// MarshalSheet wraps a priced sheet in a JSON-encoded Envelope.
func MarshalSheet(id string, sheet quoting.Sheet, ts time.Time) ([]byte, error) {
	return marshal(TypeSheet, id, sheet, ts)
}

// MarshalError wraps err in a JSON-encoded Envelope.
func MarshalError(id string, err error, ts time.Time) ([]byte, error) {
	return marshal(TypeError, id, ErrorPayload{Error: err.Error()}, ts)
}

func marshal(typ, id string, v any, ts time.Time) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{
		Type:      typ,
		ID:        id,
		Timestamp: ts,
		Payload:   payload,
	})
}

// UnmarshalReply decodes a reply envelope. A TypeError envelope is returned
// as an error carrying the server's message.
func UnmarshalReply(data []byte) (Envelope, quoting.Sheet, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, quoting.Sheet{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case TypeSheet:
		var sheet quoting.Sheet
		if err := json.Unmarshal(env.Payload, &sheet); err != nil {
			return env, sheet, fmt.Errorf("unmarshal sheet: %w", err)
		}
		return env, sheet, nil
	case TypeError:
		var ep ErrorPayload
		if err := json.Unmarshal(env.Payload, &ep); err != nil {
			return env, quoting.Sheet{}, fmt.Errorf("unmarshal error payload: %w", err)
		}
		return env, quoting.Sheet{}, fmt.Errorf("server: %s", ep.Error)
	default:
		return env, quoting.Sheet{}, fmt.Errorf("unknown envelope type: %s", env.Type)
	}
}
