package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeRecordCreated  Type = "record.created"
	TypeRecordUpdated  Type = "record.updated"
	TypeRecordTrashed  Type = "record.trashed"
	TypeRecordRestored Type = "record.restored"
	TypeTrashPurged    Type = "trash.purged"
	TypePendingOpened  Type = "pending.opened"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Table     string `json:"table"`
	RecordID  int64  `json:"record_id,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor,omitempty"`
}

// New stamps an event with a fresh id and the current UTC time.
func New(eventType Type, table string, recordID int64, actor string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Table:     table,
		RecordID:  recordID,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Actor:     actor,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}

// Nop discards every event. Used by the CLI, which has no subscribers.
type Nop struct{}

func (Nop) Publish(Event) {}

func (Nop) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event)
	return ch, func() {}
}
