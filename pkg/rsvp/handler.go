package rsvp

import (
	"errors"
	"net/http"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/event"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AttendeeDTO struct {
	EventId   string `json:"eventId"`
	UserUid   string `json:"uid"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type RsvpResponseDTO struct {
	AttendeeDTO
	Conflicts []interval.Slot `json:"conflicts"`
}

// RsvpRequest answers an event invitation. Uid falls back to the calling user.
type RsvpRequest struct {
	Uid    string `json:"uid"`
	Status string `json:"status"`
}

type Handler struct {
	rsvpService Service
}

func NewHandler(rsvpService Service) *Handler {
	return &Handler{rsvpService: rsvpService}
}

// Respond godoc
// @Summary RSVP to an event
// @Description Creates or replaces the user's answer. A "going" answer also returns the user's conflicting going events.
// @Tags RSVP
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param rsvp body RsvpRequest true "Answer"
// @Success 201 {object} RsvpResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid status"
// @Failure 404 {object} rest.ErrorResponse "Event or user not found"
// @Router /api/events/{id}/rsvp [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["id"]

	var request RsvpRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	uid := request.Uid
	if uid == "" {
		currentUid, err := user.CurrentUid(r.Context())
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "uid is required", "send uid in the body or the X-User-Id header")
			return
		}
		uid = currentUid
	}
	status, err := ParseStatus(request.Status)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid status", "status must be one of going, maybe, declined")
		return
	}

	response, err := h.rsvpService.Respond(r.Context(), eventId, uid, status)
	if err != nil {
		writeServiceError(w, err, "Failed to save rsvp")
		return
	}
	rest.WriteJSON(w, http.StatusCreated, RsvpResponseDTO{
		AttendeeDTO: attendeeToDTO(response.Attendee),
		Conflicts:   response.Conflicts,
	})
}

// Attendees godoc
// @Summary List attendees of an event
// @Tags RSVP
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {array} AttendeeDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id}/attendees [get]
func (h *Handler) Attendees(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["id"]

	attendees, err := h.rsvpService.Attendees(r.Context(), eventId)
	if err != nil {
		writeServiceError(w, err, "Failed to get attendees")
		return
	}
	response := make([]AttendeeDTO, 0, len(attendees))
	for _, attendee := range attendees {
		response = append(response, attendeeToDTO(attendee))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// Cancel godoc
// @Summary Remove an RSVP
// @Tags RSVP
// @Param id path string true "Event id"
// @Param uid path string true "User uid"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "RSVP not found"
// @Router /api/events/{id}/rsvp/{uid} [delete]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.rsvpService.Cancel(r.Context(), vars["id"], vars["uid"]); err != nil {
		writeServiceError(w, err, "Failed to cancel rsvp")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		rest.WriteError(w, http.StatusBadRequest, "Invalid status", err.Error())
	case errors.Is(err, event.ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, user.ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrAttendeeNotFound):
		rest.WriteError(w, http.StatusNotFound, "RSVP not found", "")
	default:
		log.Errorf("%s: %v", message, err)
		rest.WriteError(w, http.StatusInternalServerError, message, "")
	}
}

func attendeeToDTO(attendee Attendee) AttendeeDTO {
	return AttendeeDTO{
		EventId:   attendee.EventId,
		UserUid:   attendee.UserUid,
		Status:    string(attendee.Status),
		CreatedAt: interval.FormatISO(attendee.CreatedAt),
		UpdatedAt: interval.FormatISO(attendee.UpdatedAt),
	}
}
