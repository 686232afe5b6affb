package rsvp

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Pending-Status/CalendarMeet/pkg/event"
)

type attendeeKey struct {
	eventId string
	userUid string
}

// RepositoryStub keeps attendees in memory and reads event times from the
// given event repository.
type RepositoryStub struct {
	mu        sync.RWMutex
	attendees map[attendeeKey]Attendee
	events    event.Repository
	now       func() time.Time
}

func NewRepositoryStub(events event.Repository) *RepositoryStub {
	return &RepositoryStub{
		attendees: make(map[attendeeKey]Attendee),
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *RepositoryStub) Upsert(ctx context.Context, attendee Attendee) (Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attendeeKey{attendee.EventId, attendee.UserUid}
	now := r.now()
	if existing, ok := r.attendees[key]; ok {
		attendee.CreatedAt = existing.CreatedAt
	} else {
		attendee.CreatedAt = now
	}
	attendee.UpdatedAt = now
	r.attendees[key] = attendee
	return attendee, nil
}

func (r *RepositoryStub) GetAttendees(ctx context.Context, eventId string) ([]Attendee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attendees := make([]Attendee, 0)
	for key, attendee := range r.attendees {
		if key.eventId == eventId {
			attendees = append(attendees, attendee)
		}
	}
	slices.SortFunc(attendees, func(a, b Attendee) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserUid, b.UserUid)
	})
	return attendees, nil
}

func (r *RepositoryStub) DeleteAttendee(ctx context.Context, eventId string, userUid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attendeeKey{eventId, userUid}
	if _, ok := r.attendees[key]; !ok {
		return ErrAttendeeNotFound
	}
	delete(r.attendees, key)
	return nil
}

func (r *RepositoryStub) DeleteEventAttendees(ctx context.Context, eventId string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for key := range r.attendees {
		if key.eventId == eventId {
			delete(r.attendees, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *RepositoryStub) GoingEvents(ctx context.Context, userUid string) ([]GoingEvent, error) {
	r.mu.RLock()
	var eventIds []string
	for key, attendee := range r.attendees {
		if key.userUid == userUid && attendee.Status == StatusGoing {
			eventIds = append(eventIds, key.eventId)
		}
	}
	r.mu.RUnlock()

	going := make([]GoingEvent, 0, len(eventIds))
	for _, id := range eventIds {
		e, err := r.events.GetEvent(ctx, id)
		if errors.Is(err, event.ErrEventNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		going = append(going, GoingEvent{EventId: e.Id, Title: e.Title, Start: e.Start, End: e.End})
	}
	slices.SortFunc(going, func(a, b GoingEvent) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.EventId, b.EventId)
	})
	return going, nil
}

func (r *RepositoryStub) CountByStatus(ctx context.Context) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, attendee := range r.attendees {
		counts[attendee.Status]++
	}
	return counts, nil
}
