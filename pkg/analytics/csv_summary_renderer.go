package analytics

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/Pending-Status/CalendarMeet/pkg/rsvp"
	log "github.com/sirupsen/logrus"
)

type SummaryRenderer interface {
	RenderSummary(summary Summary) (string, error)
}

type CsvSummaryRendererImpl struct {
}

func NewCsvSummaryRenderer() *CsvSummaryRendererImpl {
	return &CsvSummaryRendererImpl{}
}

// RenderSummary writes one metric,value row per counter.
func (r *CsvSummaryRendererImpl) RenderSummary(summary Summary) (string, error) {
	data := [][]string{
		{"metric", "value"},
		{"totalEvents", strconv.Itoa(summary.TotalEvents)},
		{"totalUsers", strconv.Itoa(summary.TotalUsers)},
		{"totalRsvps", strconv.Itoa(summary.TotalRsvps)},
	}
	for _, status := range rsvp.Statuses {
		data = append(data, []string{"rsvps." + string(status), strconv.Itoa(summary.RsvpsByStatus[status])})
	}
	data = append(data, []string{"generatedAt", interval.FormatISO(summary.GeneratedAt)})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
