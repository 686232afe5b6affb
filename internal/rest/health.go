package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/clock"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	log "github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthDTO struct {
	Ok   bool   `json:"ok"`
	Time string `json:"time"`
}

// HealthHandler reports liveness and, when a Pinger is given, database
// reachability.
type HealthHandler struct {
	db    Pinger
	clock clock.Clock
}

func NewHealthHandler(db Pinger, clock clock.Clock) *HealthHandler {
	return &HealthHandler{db: db, clock: clock}
}

// Health godoc
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} HealthDTO
// @Failure 503 {object} HealthDTO
// @Router /api/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	ok := true
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Errorf("health check: database ping failed: %v", err)
			status = http.StatusServiceUnavailable
			ok = false
		}
	}
	WriteJSON(w, status, HealthDTO{Ok: ok, Time: interval.FormatISO(h.clock.Now())})
}
