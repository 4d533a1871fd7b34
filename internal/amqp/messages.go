package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerChangeMessage announces one applied ledger mutation. It carries no
// record data: consumers reload from the shared backend.
type LedgerChangeMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(kind, op, id string, revision uint64, at time.Time) *LedgerChangeMessage {
	if at.IsZero() {
		at = time.Now()
	}
	return &LedgerChangeMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Revision:  revision,
		Timestamp: at.UTC(),
	}
}

func (m *LedgerChangeMessage) Validate() error {
	if m.Kind == "" {
		return errors.New("missing kind")
	}
	if m.Op == "" {
		return errors.New("missing op")
	}
	return nil
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON decodes and validates a message body.
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
