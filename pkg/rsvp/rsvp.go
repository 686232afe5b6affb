package rsvp

import (
	"errors"
	"time"

	"github.com/Pending-Status/CalendarMeet/pkg/interval"
)

var (
	ErrInvalidStatus    = errors.New("invalid rsvp status")
	ErrAttendeeNotFound = errors.New("attendee not found")
)

type Status string

const (
	StatusGoing    Status = "going"
	StatusMaybe    Status = "maybe"
	StatusDeclined Status = "declined"
)

var Statuses = []Status{StatusGoing, StatusMaybe, StatusDeclined}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	switch status {
	case StatusGoing, StatusMaybe, StatusDeclined:
		return status, nil
	}
	return "", ErrInvalidStatus
}

type Attendee struct {
	EventId   string
	UserUid   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GoingEvent is an event a user answered "going" to.
type GoingEvent struct {
	EventId string
	Title   string
	Start   time.Time
	End     *time.Time
}

// Slot returns the event as a busy slot. Without an end it is a zero-length
// slot at its start.
func (g GoingEvent) Slot() interval.Slot {
	return slotOf(g.EventId, g.Start, g.End)
}

// Response is the outcome of an RSVP. Conflicts lists the user's other going
// events that overlap this one and is only filled for StatusGoing.
type Response struct {
	Attendee  Attendee
	Conflicts []interval.Slot
}

func slotOf(id string, start time.Time, end *time.Time) interval.Slot {
	effectiveEnd := start
	if end != nil {
		effectiveEnd = *end
	}
	return interval.Slot{
		ID:    id,
		Start: interval.FormatISO(start),
		End:   interval.FormatISO(effectiveEnd),
	}
}
