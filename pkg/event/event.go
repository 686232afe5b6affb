package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Pending-Status/CalendarMeet/pkg/interval"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

const (
	maxTitleLength = 255
	maxTypeLength  = 64
)

type Event struct {
	Id     string
	Title  string
	Start  time.Time
	End    *time.Time
	AllDay bool
	Type   string
	// Recurrence is stored and returned as given; nothing expands it.
	Recurrence    json.RawMessage
	ExtendedProps map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e Event) Interval() interval.TimeInterval {
	return interval.TimeInterval{Start: e.Start, End: e.End}
}

// Slot returns the event as a busy slot. An event without an end becomes a
// zero-length slot at its start.
func (e Event) Slot() interval.Slot {
	end := e.Start
	if e.End != nil {
		end = *e.End
	}
	return interval.Slot{
		ID:    e.Id,
		Start: interval.FormatISO(e.Start),
		End:   interval.FormatISO(end),
	}
}

// EventUpdate lists the fields of a partial update. Nil pointers leave the
// field as it is. End and Recurrence are applied only when their Set flag is
// true, so they can be cleared.
type EventUpdate struct {
	Title         *string
	Start         *time.Time
	SetEnd        bool
	End           *time.Time
	AllDay        *bool
	Type          *string
	SetRecurrence bool
	Recurrence    json.RawMessage
	ExtendedProps map[string]any
}

// ChangesTime reports whether applying the update can move the event.
func (u EventUpdate) ChangesTime() bool {
	return u.Start != nil || u.SetEnd
}

func (u EventUpdate) apply(e Event) Event {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Start != nil {
		e.Start = *u.Start
	}
	if u.SetEnd {
		e.End = u.End
	}
	if u.AllDay != nil {
		e.AllDay = *u.AllDay
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.SetRecurrence {
		e.Recurrence = u.Recurrence
	}
	if u.ExtendedProps != nil {
		e.ExtendedProps = u.ExtendedProps
	}
	return e
}
