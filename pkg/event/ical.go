package event

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

const icalProductId = "-//CalendarMeet//Events//EN"

// RenderICalendar serializes events as an RFC 5545 calendar. All-day events
// use DATE values with an exclusive end day.
func RenderICalendar(events []Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icalProductId)
	cal.SetXWRCalName("CalendarMeet")

	for _, e := range events {
		ve := cal.AddEvent(e.Id + "@calendarmeet")
		ve.SetDtStampTime(now)
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}
		ve.SetSummary(e.Title)
		if e.Type != "" {
			ve.AddProperty(ics.ComponentPropertyCategories, e.Type)
		}

		if e.AllDay {
			startDay := day(e.Start)
			endDay := startDay.AddDate(0, 0, 1)
			if e.End != nil && day(*e.End).After(startDay) {
				endDay = day(*e.End)
			}
			ve.SetAllDayStartAt(startDay)
			ve.SetAllDayEndAt(endDay)
			continue
		}

		ve.SetStartAt(e.Start)
		if e.End != nil {
			ve.SetEndAt(*e.End)
		}
	}
	return cal.Serialize()
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
