package analytics

import (
	"context"
	"fmt"

	"github.com/Pending-Status/CalendarMeet/internal/clock"
	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
	log "github.com/sirupsen/logrus"
)

type EventCounter interface {
	CountEvents(ctx context.Context) (int, error)
}

type UserCounter interface {
	CountUsers(ctx context.Context) (int, error)
}

type RsvpCounter interface {
	CountByStatus(ctx context.Context) (map[rsvp.Status]int, error)
}

type Service interface {
	GetSummary(ctx context.Context) (Summary, error)
}

type ServiceImpl struct {
	events EventCounter
	users  UserCounter
	rsvps  RsvpCounter
	clock  clock.Clock
}

func NewService(events EventCounter, users UserCounter, rsvps RsvpCounter, clock clock.Clock) *ServiceImpl {
	return &ServiceImpl{
		events: events,
		users:  users,
		rsvps:  rsvps,
		clock:  clock,
	}
}

func (s *ServiceImpl) GetSummary(ctx context.Context) (Summary, error) {
	totalEvents, err := s.events.CountEvents(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to build summary: %w", err)
	}
	totalUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to build summary: %w", err)
	}
	counts, err := s.rsvps.CountByStatus(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to build summary: %w", err)
	}

	byStatus := make(map[rsvp.Status]int, len(rsvp.Statuses))
	totalRsvps := 0
	for _, status := range rsvp.Statuses {
		byStatus[status] = counts[status]
		totalRsvps += counts[status]
	}
	log.Tracef("Summary: %d events, %d users, %d rsvps", totalEvents, totalUsers, totalRsvps)

	return Summary{
		TotalEvents:   totalEvents,
		TotalUsers:    totalUsers,
		TotalRsvps:    totalRsvps,
		RsvpsByStatus: byStatus,
		GeneratedAt:   s.clock.Now(),
	}, nil
}
