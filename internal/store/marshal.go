package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/socialgraph/internal/ir"
)

// marshalPayload converts an event payload to canonical JSON TEXT for storage.
func marshalPayload(payload ir.IRObject) (string, error) {
	data, err := ir.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses canonical JSON TEXT back to an IRObject.
// IRObject.UnmarshalJSON uses json.Number so large integers survive.
func unmarshalPayload(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return obj, nil
}

// marshalEnvelope renders an event as {"kind":..., "payload":...} canonical JSON.
func marshalEnvelope(ev ir.Event) ([]byte, error) {
	return ir.MarshalCanonical(ir.IRObject{
		"kind":    ir.IRString(ev.Kind()),
		"payload": ev.Payload(),
	})
}
