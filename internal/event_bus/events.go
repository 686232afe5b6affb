package event_bus

import "time"

const (
	EventMovedType   EventType = "event.moved"
	EventDeletedType EventType = "event.deleted"
)

// EventMoved is published when an event's start or end changes.
type EventMoved struct {
	EventId       string
	Title         string
	Start         time.Time
	End           *time.Time
	PreviousStart time.Time
	PreviousEnd   *time.Time
}

type EventDeleted struct {
	EventId string
	Title   string
}
