package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event types published on the events exchange.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventTransferCreated    = "transfer.created"
	EventReconcileCompleted = "reconcile.completed"
)

// LedgerEvent is a lightweight notification. Consumers that need the full
// entity fetch it from the database by id.
type LedgerEvent struct {
	Type      string    `json:"type"`
	EntityID  int64     `json:"entity_id"`
	AccountID int64     `json:"account_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType string, entityID, accountID int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      eventType,
		EntityID:  entityID,
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
