package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/config"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("google calendar integration is not configured")

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	Enabled() bool
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// BusySlots asks Google Calendar for the busy periods of the calendars
	// between from and to. Each slot carries its calendar id as ID.
	BusySlots(ctx context.Context, calendarIds []string, from, to time.Time) ([]interval.Slot, error)
}

type ServiceImpl struct {
	calendar *gcal.Service
}

// NewService builds a service-account backed client from the credentials file
// in cfg. With no credentials file the returned service is disabled.
func NewService(ctx context.Context, cfg config.Google) (*ServiceImpl, error) {
	if cfg.CredentialsFile == "" {
		log.Info("Google Calendar integration disabled")
		return &ServiceImpl{}, nil
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read Google credentials file: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(data, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Google credentials: %w", err)
	}
	return NewServiceWithOptions(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
}

func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*ServiceImpl, error) {
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return &ServiceImpl{calendar: service}, nil
}

func (s *ServiceImpl) Enabled() bool {
	return s.calendar != nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	calendars, err := s.calendar.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	items := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		items = append(items, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return items, nil
}

func (s *ServiceImpl) BusySlots(ctx context.Context, calendarIds []string, from, to time.Time) ([]interval.Slot, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	if len(calendarIds) == 0 {
		return []interval.Slot{}, nil
	}

	items := make([]*gcal.FreeBusyRequestItem, 0, len(calendarIds))
	for _, id := range calendarIds {
		items = append(items, &gcal.FreeBusyRequestItem{Id: id})
	}
	response, err := s.calendar.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to query free/busy from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}

	slots := make([]interval.Slot, 0)
	for _, id := range calendarIds {
		cal, ok := response.Calendars[id]
		if !ok {
			continue
		}
		for _, calErr := range cal.Errors {
			log.Warnf("Google Calendar free/busy for %s failed: %s", id, calErr.Reason)
		}
		for _, period := range cal.Busy {
			slots = append(slots, interval.Slot{ID: id, Start: period.Start, End: period.End})
		}
	}
	return slots, nil
}
