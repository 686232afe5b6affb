package rsvp

import (
	"context"
	"fmt"

	"github.com/Pending-Status/CalendarMeet/internal/event_bus"
	"github.com/Pending-Status/CalendarMeet/pkg/event"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Respond records the user's answer to the event. For StatusGoing the
	// response also lists the user's other going events that conflict with it.
	Respond(ctx context.Context, eventId string, userUid string, status Status) (Response, error)
	Attendees(ctx context.Context, eventId string) ([]Attendee, error)
	Cancel(ctx context.Context, eventId string, userUid string) error
	// BusySlots returns the user's going events as busy slots.
	BusySlots(ctx context.Context, userUid string) ([]interval.Slot, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type EventReader interface {
	GetEvent(ctx context.Context, id string) (event.Event, error)
}

type UserReader interface {
	GetUserByUid(ctx context.Context, uid string) (user.User, error)
}

type ServiceImpl struct {
	repo     Repository
	events   EventReader
	users    UserReader
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, events EventReader, users UserReader, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, events: events, users: users, eventBus: eventBus}
	event_bus.SubscribeTyped[event_bus.EventMoved](
		eventBus,
		event_bus.EventMovedType,
		func(e event_bus.EventT[event_bus.EventMoved]) error {
			log.Debugf("received event moved: %v", e.Data.EventId)
			if err := service.handleEventMoved(e.Context(), e.Data); err != nil {
				log.Errorf("failed to check attendees of moved event %s: %v", e.Data.EventId, err)
				return err
			}
			return nil
		},
	)
	event_bus.SubscribeTyped[event_bus.EventDeleted](
		eventBus,
		event_bus.EventDeletedType,
		func(e event_bus.EventT[event_bus.EventDeleted]) error {
			deleted, err := repo.DeleteEventAttendees(e.Context(), e.Data.EventId)
			if err != nil {
				return fmt.Errorf("failed to remove attendees of event %s: %w", e.Data.EventId, err)
			}
			log.Debugf("removed %d attendees of deleted event %s", deleted, e.Data.EventId)
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) Respond(ctx context.Context, eventId string, userUid string, status Status) (Response, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Response{}, fmt.Errorf("%w: %q", err, status)
	}
	evt, err := s.events.GetEvent(ctx, eventId)
	if err != nil {
		return Response{}, fmt.Errorf("failed to respond to event %s: %w", eventId, err)
	}
	if _, err := s.users.GetUserByUid(ctx, userUid); err != nil {
		return Response{}, fmt.Errorf("failed to respond to event %s: %w", eventId, err)
	}

	attendee, err := s.repo.Upsert(ctx, Attendee{EventId: eventId, UserUid: userUid, Status: status})
	if err != nil {
		return Response{}, fmt.Errorf("failed to respond to event %s: %w", eventId, err)
	}
	log.Debugf("User %s is %s for event %s", userUid, status, eventId)

	response := Response{Attendee: attendee, Conflicts: []interval.Slot{}}
	if status != StatusGoing {
		return response, nil
	}
	conflicts, err := s.conflictsFor(ctx, userUid, evt.Slot())
	if err != nil {
		return Response{}, err
	}
	response.Conflicts = conflicts
	return response, nil
}

func (s *ServiceImpl) Attendees(ctx context.Context, eventId string) ([]Attendee, error) {
	if _, err := s.events.GetEvent(ctx, eventId); err != nil {
		return nil, fmt.Errorf("failed to get attendees of event %s: %w", eventId, err)
	}
	attendees, err := s.repo.GetAttendees(ctx, eventId)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees of event %s: %w", eventId, err)
	}
	return attendees, nil
}

func (s *ServiceImpl) Cancel(ctx context.Context, eventId string, userUid string) error {
	if err := s.repo.DeleteAttendee(ctx, eventId, userUid); err != nil {
		return fmt.Errorf("failed to cancel rsvp of %s for event %s: %w", userUid, eventId, err)
	}
	return nil
}

func (s *ServiceImpl) BusySlots(ctx context.Context, userUid string) ([]interval.Slot, error) {
	going, err := s.repo.GoingEvents(ctx, userUid)
	if err != nil {
		return nil, fmt.Errorf("failed to get busy slots of %s: %w", userUid, err)
	}
	slots := make([]interval.Slot, 0, len(going))
	for _, g := range going {
		slots = append(slots, g.Slot())
	}
	return slots, nil
}

func (s *ServiceImpl) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rsvps: %w", err)
	}
	for _, status := range Statuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}

// conflictsFor checks proposed against the user's going events other than
// the proposed one.
func (s *ServiceImpl) conflictsFor(ctx context.Context, userUid string, proposed interval.Slot) ([]interval.Slot, error) {
	busy, err := s.BusySlots(ctx, userUid)
	if err != nil {
		return nil, err
	}
	others := make([]interval.Slot, 0, len(busy))
	for _, slot := range busy {
		if slot.ID != proposed.ID {
			others = append(others, slot)
		}
	}
	return interval.FindConflicts(proposed, others), nil
}

func (s *ServiceImpl) handleEventMoved(ctx context.Context, moved event_bus.EventMoved) error {
	attendees, err := s.repo.GetAttendees(ctx, moved.EventId)
	if err != nil {
		return err
	}
	proposed := slotOf(moved.EventId, moved.Start, moved.End)
	for _, attendee := range attendees {
		if attendee.Status != StatusGoing {
			continue
		}
		conflicts, err := s.conflictsFor(ctx, attendee.UserUid, proposed)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			log.Warnf("Event %q moved to %s; attendee %s now has %d conflicting event(s)",
				moved.Title, proposed.Start, attendee.UserUid, len(conflicts))
		}
	}
	return nil
}
