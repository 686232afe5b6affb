package google

import (
	"errors"
	"net/http"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ListCalendars godoc
// @Summary List Google calendars visible to the service account
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 503 {object} rest.ErrorResponse "Integration not configured"
// @Router /api/integrations/google/calendars [get]
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			rest.WriteError(w, http.StatusServiceUnavailable, "Google Calendar integration is not configured", "")
			return
		}
		log.Errorf("failed to list Google calendars: %v", err)
		rest.WriteError(w, http.StatusBadGateway, "Failed to list Google calendars", "")
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}
