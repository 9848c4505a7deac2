package amqp

import (
	"encoding/json"
	"time"

	"glowbook/internal/ledger"
)

// LedgerChangeMessage announces a ledger mutation. It carries only the id;
// consumers read the appointment itself from the durable substrate.
type LedgerChangeMessage struct {
	ID        string            `json:"id,omitempty"`
	Kind      ledger.ChangeKind `json:"kind"`
	Version   uint64            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewLedgerChangeMessage(c ledger.Change) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		ID:        c.ID,
		Kind:      c.Kind,
		Version:   c.Version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
