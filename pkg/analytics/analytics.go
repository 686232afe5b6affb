package analytics

import (
	"time"

	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
)

type Summary struct {
	TotalEvents   int
	TotalUsers    int
	TotalRsvps    int
	RsvpsByStatus map[rsvp.Status]int
	GeneratedAt   time.Time
}
