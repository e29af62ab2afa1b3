package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventSync   = "sync"
	EventDelete = "delete"
)

// TransactionEvent is the lightweight message the API publishes after a
// mutation. The worker fetches the full record from storage by ID, so the
// event only carries what is needed to route it.
type TransactionEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncEvent(id string) *TransactionEvent {
	return &TransactionEvent{Kind: EventSync, ID: id, Timestamp: time.Now()}
}

func NewDeleteEvent(id string) *TransactionEvent {
	return &TransactionEvent{Kind: EventDelete, ID: id, Timestamp: time.Now()}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind != EventSync && e.Kind != EventDelete {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
