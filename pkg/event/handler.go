package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Id            string          `json:"id"`
	Title         string          `json:"title"`
	Start         string          `json:"start"`
	End           *string         `json:"end"`
	AllDay        bool            `json:"allDay"`
	Type          string          `json:"type,omitempty"`
	Recurrence    json.RawMessage `json:"recurrence,omitempty"`
	ExtendedProps map[string]any  `json:"extendedProps"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

type CreateEventRequest struct {
	Title         string          `json:"title"`
	Start         string          `json:"start"`
	End           *string         `json:"end"`
	AllDay        bool            `json:"allDay"`
	Type          string          `json:"type"`
	Recurrence    json.RawMessage `json:"recurrence"`
	ExtendedProps map[string]any  `json:"extendedProps"`
}

type MoveEventRequest struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

type Handler struct {
	eventService Service
}

func NewHandler(eventService Service) *Handler {
	return &Handler{eventService: eventService}
}

// GetEvents godoc
// @Summary List events
// @Description Lists all events, or only those overlapping the start/end window (endpoints included) when both are given
// @Tags Event
// @Produce json
// @Param start query string false "Window start (ISO-8601)"
// @Param end query string false "Window end (ISO-8601)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid start or end"
// @Router /api/events [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting events")

	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	var events []Event
	var err error
	if from != nil && to != nil {
		events, err = h.eventService.GetEventsInRange(r.Context(), *from, *to)
	} else {
		events, err = h.eventService.GetEvents(r.Context())
	}
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch events", "")
		return
	}

	response := make([]EventDTO, 0, len(events))
	for _, event := range events {
		response = append(response, eventToDTO(event))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// ExportCalendar godoc
// @Summary Export events as iCalendar
// @Tags Event
// @Produce text/calendar
// @Param start query string false "Window start (ISO-8601)"
// @Param end query string false "Window end (ISO-8601)"
// @Success 200 {string} string "text/calendar feed"
// @Failure 400 {object} rest.ErrorResponse "Invalid start or end"
// @Router /api/events.ics [get]
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	feed, err := h.eventService.ExportCalendar(r.Context(), from, to)
	if err != nil {
		log.Errorf("failed to export events: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to export events", "")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendarmeet.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating event")

	var request CreateEventRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}

	if request.Title == "" || request.Start == "" {
		rest.WriteError(w, http.StatusBadRequest, "title and start are required", "")
		return
	}
	start, ok := interval.ParseISO(request.Start)
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start format", "start must be an ISO-8601 timestamp")
		return
	}
	end, ok := parseOptionalTime(request.End)
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid end format", "end must be an ISO-8601 timestamp or null")
		return
	}

	created, err := h.eventService.CreateEvent(r.Context(), Event{
		Title:         request.Title,
		Start:         start,
		End:           end,
		AllDay:        request.AllDay,
		Type:          request.Type,
		Recurrence:    normalizeRaw(request.Recurrence),
		ExtendedProps: request.ExtendedProps,
	})
	if err != nil {
		h.writeServiceError(w, err, "Failed to create event")
		return
	}

	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partial update: only fields present in the body change; "end": null removes the end
// @Tags Event
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Tracef("Updating event %s", id)

	var fields map[string]json.RawMessage
	if !rest.DecodeJSON(w, r, &fields) {
		return
	}
	update, err := parseEventUpdate(fields)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event update", err.Error())
		return
	}

	updated, err := h.eventService.UpdateEvent(r.Context(), id, update)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update event")
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

// MoveEvent godoc
// @Summary Move or resize an event
// @Description Sets start and end; a missing end removes it
// @Tags Event
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param move body MoveEventRequest true "New time"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id}/move [post]
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request MoveEventRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	start, ok := interval.ParseISO(request.Start)
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start format", "start is required and must be an ISO-8601 timestamp")
		return
	}
	end, ok := parseOptionalTime(request.End)
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid end format", "end must be an ISO-8601 timestamp or null")
		return
	}

	moved, err := h.eventService.MoveEvent(r.Context(), id, start, end)
	if err != nil {
		h.writeServiceError(w, err, "Failed to move event")
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(moved))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Event
// @Param id path string true "Event id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	default:
		log.Errorf("%s: %v", message, err)
		rest.WriteError(w, http.StatusInternalServerError, message, "")
	}
}

// parseWindow reads the optional start/end query parameters. It writes a 400
// response and returns ok=false when a given bound does not parse.
func parseWindow(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	query := r.URL.Query()
	for _, param := range []struct {
		name   string
		target **time.Time
	}{{"start", &from}, {"end", &to}} {
		value := query.Get(param.name)
		if value == "" {
			continue
		}
		t, valid := interval.ParseISO(value)
		if !valid {
			rest.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param.name), param.name+" must be an ISO-8601 timestamp")
			return nil, nil, false
		}
		*param.target = &t
	}
	return from, to, true
}

func parseOptionalTime(value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	t, ok := interval.ParseISO(*value)
	if !ok {
		return nil, false
	}
	return &t, true
}

func parseEventUpdate(fields map[string]json.RawMessage) (EventUpdate, error) {
	var update EventUpdate
	for name, raw := range fields {
		isNull := bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
		switch name {
		case "title":
			var title string
			if isNull || json.Unmarshal(raw, &title) != nil {
				return EventUpdate{}, errors.New("title must be a string")
			}
			update.Title = &title
		case "start":
			var value string
			if isNull || json.Unmarshal(raw, &value) != nil {
				return EventUpdate{}, errors.New("start must be an ISO-8601 timestamp")
			}
			start, ok := interval.ParseISO(value)
			if !ok {
				return EventUpdate{}, errors.New("start must be an ISO-8601 timestamp")
			}
			update.Start = &start
		case "end":
			update.SetEnd = true
			if isNull {
				continue
			}
			var value string
			if json.Unmarshal(raw, &value) != nil {
				return EventUpdate{}, errors.New("end must be an ISO-8601 timestamp or null")
			}
			end, ok := parseOptionalTime(&value)
			if !ok {
				return EventUpdate{}, errors.New("end must be an ISO-8601 timestamp or null")
			}
			update.End = end
		case "allDay":
			var allDay bool
			if isNull || json.Unmarshal(raw, &allDay) != nil {
				return EventUpdate{}, errors.New("allDay must be a boolean")
			}
			update.AllDay = &allDay
		case "type":
			var eventType string
			if !isNull && json.Unmarshal(raw, &eventType) != nil {
				return EventUpdate{}, errors.New("type must be a string")
			}
			update.Type = &eventType
		case "recurrence":
			update.SetRecurrence = true
			update.Recurrence = normalizeRaw(raw)
		case "extendedProps":
			var props map[string]any
			if isNull || json.Unmarshal(raw, &props) != nil {
				return EventUpdate{}, errors.New("extendedProps must be an object")
			}
			update.ExtendedProps = props
		default:
			log.Debugf("Ignoring unknown event field %q", name)
		}
	}
	return update, nil
}

// normalizeRaw maps an absent or JSON null value to nil.
func normalizeRaw(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

func eventToDTO(event Event) EventDTO {
	var end *string
	if event.End != nil {
		formatted := interval.FormatISO(*event.End)
		end = &formatted
	}
	props := event.ExtendedProps
	if props == nil {
		props = map[string]any{}
	}
	return EventDTO{
		Id:            event.Id,
		Title:         event.Title,
		Start:         interval.FormatISO(event.Start),
		End:           end,
		AllDay:        event.AllDay,
		Type:          event.Type,
		Recurrence:    event.Recurrence,
		ExtendedProps: props,
		CreatedAt:     interval.FormatISO(event.CreatedAt),
		UpdatedAt:     interval.FormatISO(event.UpdatedAt),
	}
}
