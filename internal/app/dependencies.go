package app

import (
	"context"

	"github.com/Pending-Status/CalendarMeet/internal/clock"
	"github.com/Pending-Status/CalendarMeet/internal/config"
	"github.com/Pending-Status/CalendarMeet/internal/event_bus"
	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/analytics"
	"github.com/Pending-Status/CalendarMeet/pkg/availability"
	"github.com/Pending-Status/CalendarMeet/pkg/event"
	"github.com/Pending-Status/CalendarMeet/pkg/google"
	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories are the storage dependencies of the application.
type Repositories struct {
	DB     rest.Pinger
	Events event.Repository
	Users  user.Repo
	Rsvps  rsvp.Repository
}

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    clock.Clock

	HealthHandler *rest.HealthHandler

	UserService user.Service
	UserHandler *user.Handler

	EventService event.Service
	EventHandler *event.Handler

	RsvpService rsvp.Service
	RsvpHandler *rsvp.Handler

	GoogleService google.Service
	GoogleHandler *google.Handler

	AvailabilityService availability.Service
	AvailabilityHandler *availability.Handler

	AnalyticsService analytics.Service
	AnalyticsHandler *analytics.Handler
}

// BuildDependencies initializes the Postgres repositories and the Google
// Calendar client and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	googleService, err := google.NewService(ctx, cfg.Google)
	if err != nil {
		return nil, err
	}
	repos := Repositories{
		DB:     db,
		Events: event.NewRepository(db),
		Users:  user.NewUserRepo(db),
		Rsvps:  rsvp.NewRepository(db),
	}
	return WireDependencies(repos, googleService, clock.SystemClock{}), nil
}

func WireDependencies(repos Repositories, googleService google.Service, clk clock.Clock) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = clk
	deps.HealthHandler = rest.NewHealthHandler(repos.DB, deps.Clock)

	userService := user.NewUserService(repos.Users)
	deps.UserService = userService
	deps.UserHandler = user.NewHandler(deps.UserService)

	eventService := event.NewService(repos.Events, deps.EventBus, deps.Clock)
	deps.EventService = eventService
	deps.EventHandler = event.NewHandler(deps.EventService)

	rsvpService := rsvp.NewService(repos.Rsvps, eventService, userService, deps.EventBus)
	deps.RsvpService = rsvpService
	deps.RsvpHandler = rsvp.NewHandler(deps.RsvpService)

	deps.GoogleService = googleService
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.AvailabilityService = availability.NewService(rsvpService, userService, googleService)
	deps.AvailabilityHandler = availability.NewHandler(deps.AvailabilityService)

	deps.AnalyticsService = analytics.NewService(eventService, userService, rsvpService, deps.Clock)
	deps.AnalyticsHandler = analytics.NewHandler(deps.AnalyticsService, analytics.NewCsvSummaryRenderer())

	return deps
}
