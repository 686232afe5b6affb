package event

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Pending-Status/CalendarMeet/internal/clock"
	"github.com/Pending-Status/CalendarMeet/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetEvents(ctx context.Context) ([]Event, error)
	// GetEventsInRange returns events overlapping [from, to] with endpoints
	// included. A window whose start is not before its end is empty.
	GetEventsInRange(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, id string, update EventUpdate) (Event, error)
	MoveEvent(ctx context.Context, id string, start time.Time, end *time.Time) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CountEvents(ctx context.Context) (int, error)
	// ExportCalendar renders the events, all of them or those in the window,
	// as an iCalendar feed.
	ExportCalendar(ctx context.Context, from, to *time.Time) (string, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	clock    clock.Clock
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock clock.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		eventBus: eventBus,
		clock:    clock,
	}
}

func (s *ServiceImpl) GetEvents(ctx context.Context) ([]Event, error) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

func (s *ServiceImpl) GetEventsInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	if !from.Before(to) {
		log.Debugf("Empty range %s - %s, skipping query", from, to)
		return []Event{}, nil
	}
	events, err := s.repo.GetEvents(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get events between %s and %s: %w", from, to, err)
	}
	return events, nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return event, nil
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	if err := validate(event); err != nil {
		return Event{}, err
	}

	stored, err := s.repo.StoreEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	log.Debugf("Created event %s (%s)", stored.Id, stored.Title)
	return stored, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, id string, update EventUpdate) (Event, error) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		update.Title = &title
	}

	var previous, updated Event
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		previous, err = repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		candidate := update.apply(previous)
		if err := validate(candidate); err != nil {
			return err
		}
		updated, err = repo.UpdateEvent(ctx, candidate)
		return err
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event %s: %w", id, err)
	}

	if update.ChangesTime() && timeChanged(previous, updated) {
		s.publishMoved(ctx, previous, updated)
	}
	return updated, nil
}

func (s *ServiceImpl) MoveEvent(ctx context.Context, id string, start time.Time, end *time.Time) (Event, error) {
	update := EventUpdate{Start: &start, SetEnd: true, End: end}
	return s.UpdateEvent(ctx, id, update)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	s.publish(event_bus.NewEvent(ctx, event_bus.EventDeletedType, event_bus.EventDeleted{
		EventId: event.Id,
		Title:   event.Title,
	}))
	return nil
}

func (s *ServiceImpl) CountEvents(ctx context.Context) (int, error) {
	count, err := s.repo.CountEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (s *ServiceImpl) ExportCalendar(ctx context.Context, from, to *time.Time) (string, error) {
	var events []Event
	var err error
	if from != nil && to != nil {
		events, err = s.GetEventsInRange(ctx, *from, *to)
	} else {
		events, err = s.GetEvents(ctx)
	}
	if err != nil {
		return "", err
	}
	return RenderICalendar(events, s.clock.Now()), nil
}

func (s *ServiceImpl) publishMoved(ctx context.Context, previous, updated Event) {
	s.publish(event_bus.NewEvent(ctx, event_bus.EventMovedType, event_bus.EventMoved{
		EventId:       updated.Id,
		Title:         updated.Title,
		Start:         updated.Start,
		End:           updated.End,
		PreviousStart: previous.Start,
		PreviousEnd:   previous.End,
	}))
}

// publish logs subscriber failures; the change itself is already stored.
func (s *ServiceImpl) publish(e event_bus.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(e); err != nil {
		log.Warnf("failed to publish %s: %v", e.Type, err)
	}
}

func validate(event Event) error {
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if utf8.RuneCountInString(event.Title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidEvent, maxTitleLength)
	}
	if event.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidEvent)
	}
	if event.End != nil && !event.Interval().IsValidRange() {
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	if utf8.RuneCountInString(event.Type) > maxTypeLength {
		return fmt.Errorf("%w: type must be at most %d characters", ErrInvalidEvent, maxTypeLength)
	}
	return nil
}

func timeChanged(a, b Event) bool {
	if !a.Start.Equal(b.Start) {
		return true
	}
	if (a.End == nil) != (b.End == nil) {
		return true
	}
	return a.End != nil && !a.End.Equal(*b.End)
}
