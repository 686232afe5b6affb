package analytics

import (
	"net/http"
	"strings"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
	log "github.com/sirupsen/logrus"
)

type RsvpsByStatusDTO struct {
	Going    int `json:"going"`
	Maybe    int `json:"maybe"`
	Declined int `json:"declined"`
}

type SummaryDTO struct {
	TotalEvents   int              `json:"totalEvents"`
	TotalUsers    int              `json:"totalUsers"`
	TotalRsvps    int              `json:"totalRsvps"`
	RsvpsByStatus RsvpsByStatusDTO `json:"rsvpsByStatus"`
	GeneratedAt   string           `json:"generatedAt"`
}

type Handler struct {
	analyticsService Service
	csvRenderer      SummaryRenderer
}

func NewHandler(analyticsService Service, csvRenderer SummaryRenderer) *Handler {
	return &Handler{analyticsService, csvRenderer}
}

// GetSummary godoc
// @Summary Usage summary
// @Description Counts of events, users and RSVPs. Send Accept: text/csv for a CSV rendering.
// @Tags Analytics
// @Produce json
// @Produce text/csv
// @Success 200 {object} SummaryDTO
// @Router /api/analytics/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.GetSummary(r.Context())
	if err != nil {
		log.Errorf("failed to build analytics summary: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to build summary", "")
		return
	}

	if strings.HasPrefix(r.Header.Get("Accept"), "text/csv") {
		csv, err := h.csvRenderer.RenderSummary(summary)
		if err != nil {
			rest.WriteError(w, http.StatusInternalServerError, "Failed to render summary", "")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv summary: %v", err)
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, SummaryDTO{
		TotalEvents: summary.TotalEvents,
		TotalUsers:  summary.TotalUsers,
		TotalRsvps:  summary.TotalRsvps,
		RsvpsByStatus: RsvpsByStatusDTO{
			Going:    summary.RsvpsByStatus[rsvp.StatusGoing],
			Maybe:    summary.RsvpsByStatus[rsvp.StatusMaybe],
			Declined: summary.RsvpsByStatus[rsvp.StatusDeclined],
		},
		GeneratedAt: interval.FormatISO(summary.GeneratedAt),
	})
}
