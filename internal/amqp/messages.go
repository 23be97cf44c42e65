package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnvelopeEventMessage tells the mirror worker that an envelope changed.
// It carries only the id and the kind of change; the worker re-reads the
// envelope from the repository so the mirror always sees committed state.
type EnvelopeEventMessage struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEnvelopeEventMessage(id int64, kind string) *EnvelopeEventMessage {
	return &EnvelopeEventMessage{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *EnvelopeEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EnvelopeEventMessageFromJSON(data []byte) (*EnvelopeEventMessage, error) {
	var msg EnvelopeEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == 0 || msg.Kind == "" {
		return nil, fmt.Errorf("incomplete envelope event: %s", data)
	}
	return &msg, nil
}
