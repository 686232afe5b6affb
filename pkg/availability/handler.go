package availability

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ConflictsRequest struct {
	Proposed interval.Slot   `json:"proposed"`
	Busy     []interval.Slot `json:"busy"`
}

type ConflictsResponse struct {
	Conflicts []interval.Slot `json:"conflicts"`
}

type FreeRequest struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	Busy  []interval.Slot `json:"busy"`
}

type FreeResponse struct {
	Free bool `json:"free"`
}

type AvailabilityDTO struct {
	Free      bool            `json:"free"`
	Conflicts []interval.Slot `json:"conflicts"`
}

type Handler struct {
	availabilityService Service
}

func NewHandler(availabilityService Service) *Handler {
	return &Handler{availabilityService: availabilityService}
}

// Conflicts godoc
// @Summary Find busy slots conflicting with a proposed meeting
// @Description Adjacent slots do not conflict. Busy slots that do not parse are skipped.
// @Tags Availability
// @Accept json
// @Produce json
// @Param request body ConflictsRequest true "Proposal and busy slots"
// @Success 200 {object} ConflictsResponse
// @Failure 400 {object} rest.ErrorResponse "Invalid proposal"
// @Router /api/availability/conflicts [post]
func (h *Handler) Conflicts(w http.ResponseWriter, r *http.Request) {
	var request ConflictsRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	if !validTimestamps(w, request.Proposed.Start, request.Proposed.End) {
		return
	}

	conflicts := h.availabilityService.Conflicts(request.Proposed, request.Busy)
	rest.WriteJSON(w, http.StatusOK, ConflictsResponse{Conflicts: conflicts})
}

// Free godoc
// @Summary Check whether a time range is free
// @Tags Availability
// @Accept json
// @Produce json
// @Param request body FreeRequest true "Range and busy slots"
// @Success 200 {object} FreeResponse
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Router /api/availability/free [post]
func (h *Handler) Free(w http.ResponseWriter, r *http.Request) {
	var request FreeRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	if !validTimestamps(w, request.Start, request.End) {
		return
	}

	free := h.availabilityService.IsFree(request.Start, request.End, request.Busy)
	rest.WriteJSON(w, http.StatusOK, FreeResponse{Free: free})
}

// UserAvailability godoc
// @Summary Check a user's availability
// @Description Checks start..end against the user's going events and, when calendarId is given, Google Calendar free/busy
// @Tags Availability
// @Produce json
// @Param uid path string true "User uid"
// @Param start query string true "Range start (ISO-8601)"
// @Param end query string true "Range end (ISO-8601)"
// @Param calendarId query []string false "Google calendar ids"
// @Success 200 {object} AvailabilityDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Failure 502 {object} rest.ErrorResponse "Calendar provider failed"
// @Router /api/users/{uid}/availability [get]
func (h *Handler) UserAvailability(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	query := r.URL.Query()
	if !validTimestamps(w, query.Get("start"), query.Get("end")) {
		return
	}
	from, _ := interval.ParseISO(query.Get("start"))
	to, _ := interval.ParseISO(query.Get("end"))

	var calendarIds []string
	for _, value := range query["calendarId"] {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				calendarIds = append(calendarIds, id)
			}
		}
	}

	availability, err := h.availabilityService.UserAvailability(r.Context(), uid, from, to, calendarIds)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			rest.WriteError(w, http.StatusNotFound, "User not found", "")
		case errors.Is(err, ErrCalendarUnavailable):
			log.Warnf("calendar provider failed for %s: %v", uid, err)
			rest.WriteError(w, http.StatusBadGateway, "Failed to query external calendar", "")
		default:
			log.Errorf("failed to check availability of %s: %v", uid, err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to check availability", "")
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, AvailabilityDTO{
		Free:      availability.Free,
		Conflicts: availability.Conflicts,
	})
}

// validTimestamps writes a 400 response unless both start and end parse.
func validTimestamps(w http.ResponseWriter, start, end string) bool {
	if _, ok := interval.ParseISO(start); !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start format", "start must be an ISO-8601 timestamp")
		return false
	}
	if _, ok := interval.ParseISO(end); !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid end format", "end must be an ISO-8601 timestamp")
		return false
	}
	return true
}
