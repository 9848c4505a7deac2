package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"glowbook/internal/core"
)

// Encode serializes appointments in the persisted collection shape.
// An empty collection encodes as "[]", never "null".
func Encode(items []core.Appointment) ([]byte, error) {
	if items == nil {
		items = []core.Appointment{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode appointments: %w", err)
	}
	return data, nil
}

// Decode parses a persisted collection or export artifact. Records must carry
// a unique non-empty id and a known status.
func Decode(data []byte) ([]core.Appointment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []core.Appointment{}, nil
	}

	var items []core.Appointment
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, a := range items {
		if a.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrInvalidSnapshot, i)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidSnapshot, a.ID)
		}
		if !a.Status.Valid() {
			return nil, fmt.Errorf("%w: record %q has status %q", ErrInvalidSnapshot, a.ID, a.Status)
		}
		seen[a.ID] = struct{}{}
	}
	if err := checkCentPrecision(data); err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Appointment{}
	}
	return items, nil
}

var amountFields = []string{"amountPaid", "totalPrice"}

// checkCentPrecision rejects amounts finer than a cent, which would not
// survive a decode/encode round trip unchanged.
func checkCentPrecision(data []byte) error {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for i, rec := range records {
		for _, field := range amountFields {
			if v, ok := rec[field]; ok && !core.FitsCents(string(v)) {
				return fmt.Errorf("%w: record %d has %s %s finer than a cent", ErrInvalidSnapshot, i, field, v)
			}
		}
	}
	return nil
}
