package analytics

import (
	"context"

	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
)

type countersStub struct {
	events int
	users  int
	rsvps  map[rsvp.Status]int
	err    error
}

func (s *countersStub) CountEvents(ctx context.Context) (int, error) {
	return s.events, s.err
}

func (s *countersStub) CountUsers(ctx context.Context) (int, error) {
	return s.users, s.err
}

func (s *countersStub) CountByStatus(ctx context.Context) (map[rsvp.Status]int, error) {
	return s.rsvps, s.err
}
