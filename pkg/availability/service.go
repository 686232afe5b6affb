package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrCalendarUnavailable = errors.New("external calendar unavailable")

// Availability is the answer for one proposed time range.
type Availability struct {
	Free      bool
	Conflicts []interval.Slot
}

type BusySlotReader interface {
	BusySlots(ctx context.Context, userUid string) ([]interval.Slot, error)
}

type UserReader interface {
	GetUserByUid(ctx context.Context, uid string) (user.User, error)
}

// CalendarProvider is an external source of busy periods.
type CalendarProvider interface {
	Enabled() bool
	BusySlots(ctx context.Context, calendarIds []string, from, to time.Time) ([]interval.Slot, error)
}

type Service interface {
	Conflicts(proposed interval.Slot, busy []interval.Slot) []interval.Slot
	IsFree(start, end string, busy []interval.Slot) bool
	// UserAvailability checks from..to against the user's going events and,
	// when calendarIds are given and a provider is configured, the busy
	// periods of those external calendars.
	UserAvailability(ctx context.Context, uid string, from, to time.Time, calendarIds []string) (Availability, error)
}

type ServiceImpl struct {
	rsvps    BusySlotReader
	users    UserReader
	calendar CalendarProvider
}

func NewService(rsvps BusySlotReader, users UserReader, calendar CalendarProvider) *ServiceImpl {
	return &ServiceImpl{rsvps: rsvps, users: users, calendar: calendar}
}

func (s *ServiceImpl) Conflicts(proposed interval.Slot, busy []interval.Slot) []interval.Slot {
	return interval.FindConflicts(proposed, busy)
}

func (s *ServiceImpl) IsFree(start, end string, busy []interval.Slot) bool {
	return interval.IsTimeSlotFree(start, end, busy)
}

func (s *ServiceImpl) UserAvailability(ctx context.Context, uid string, from, to time.Time, calendarIds []string) (Availability, error) {
	if _, err := s.users.GetUserByUid(ctx, uid); err != nil {
		return Availability{}, fmt.Errorf("failed to check availability of %s: %w", uid, err)
	}
	busy, err := s.rsvps.BusySlots(ctx, uid)
	if err != nil {
		return Availability{}, fmt.Errorf("failed to check availability of %s: %w", uid, err)
	}

	if len(calendarIds) > 0 {
		if s.calendar == nil || !s.calendar.Enabled() {
			log.Debugf("Ignoring calendar ids %v, no calendar provider configured", calendarIds)
		} else {
			external, err := s.calendar.BusySlots(ctx, calendarIds, from, to)
			if err != nil {
				return Availability{}, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
			}
			busy = append(busy, external...)
		}
	}

	proposed := interval.Slot{Start: interval.FormatISO(from), End: interval.FormatISO(to)}
	return Availability{
		Free:      s.IsFree(proposed.Start, proposed.End, busy),
		Conflicts: s.Conflicts(proposed, busy),
	}, nil
}
