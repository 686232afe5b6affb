package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/api/health", deps.HealthHandler.Health).Methods("GET")

	// Events (events.ics before {id} routes)
	r.HandleFunc("/api/events.ics", deps.EventHandler.ExportCalendar).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{id}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{id}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events/{id}/move", deps.EventHandler.MoveEvent).Methods("POST")

	// RSVP
	r.HandleFunc("/api/events/{id}/rsvp", deps.RsvpHandler.Respond).Methods("POST")
	r.HandleFunc("/api/events/{id}/rsvp/{uid}", deps.RsvpHandler.Cancel).Methods("DELETE")
	r.HandleFunc("/api/events/{id}/attendees", deps.RsvpHandler.Attendees).Methods("GET")

	// Users
	r.HandleFunc("/api/users", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/users", deps.UserHandler.ListUsers).Methods("GET")
	r.HandleFunc("/api/users/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/users/{uid}", deps.UserHandler.GetUser).Methods("GET")
	r.HandleFunc("/api/users/{uid}", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/users/{uid}/friends", deps.UserHandler.AddFriend).Methods("POST")
	r.HandleFunc("/api/users/{uid}/friends/{friendUid}", deps.UserHandler.RemoveFriend).Methods("DELETE")
	r.HandleFunc("/api/users/{uid}/recommendations", deps.UserHandler.Recommendations).Methods("GET")
	r.HandleFunc("/api/users/{uid}/availability", deps.AvailabilityHandler.UserAvailability).Methods("GET")

	// Availability
	r.HandleFunc("/api/availability/conflicts", deps.AvailabilityHandler.Conflicts).Methods("POST")
	r.HandleFunc("/api/availability/free", deps.AvailabilityHandler.Free).Methods("POST")

	// Analytics
	r.HandleFunc("/api/analytics/summary", deps.AnalyticsHandler.GetSummary).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}
