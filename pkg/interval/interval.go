package interval

import (
	"strings"
	"time"
)

// TimeInterval is a time span with an optional end. A nil End collapses the
// interval to the instant Start.
type TimeInterval struct {
	Start time.Time
	End   *time.Time
}

// Instant returns an interval without an end.
func Instant(t time.Time) TimeInterval {
	return TimeInterval{Start: t}
}

// Between returns an interval spanning start to end.
func Between(start, end time.Time) TimeInterval {
	return TimeInterval{Start: start, End: &end}
}

// EffectiveEnd returns End, or Start when the interval has no end.
func (i TimeInterval) EffectiveEnd() time.Time {
	if i.End == nil {
		return i.Start
	}
	return *i.End
}

// IsValidRange reports whether the interval can be used as a query range or a
// proposed meeting: both bounds are set and Start is strictly before End.
func (i TimeInterval) IsValidRange() bool {
	if !i.valid() || i.End == nil {
		return false
	}
	return i.Start.Before(*i.End)
}

func (i TimeInterval) valid() bool {
	if i.Start.IsZero() {
		return false
	}
	return i.End == nil || !i.End.IsZero()
}

// RangesOverlapInclusive reports whether a and b intersect when both are read
// as closed intervals. Touching endpoints count as overlapping. An interval
// whose bounds are not valid points in time never overlaps anything.
//
// This is the event range-filter rule. Meeting and availability checks use
// IntervalsConflictStrict instead.
func RangesOverlapInclusive(a, b TimeInterval) bool {
	if !a.valid() || !b.valid() {
		return false
	}
	return !a.Start.After(b.EffectiveEnd()) && !b.Start.After(a.EffectiveEnd())
}

// Overlaps is RangesOverlapInclusive over loose arguments. A nil end means the
// corresponding interval is an instant.
func Overlaps(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	return RangesOverlapInclusive(TimeInterval{Start: aStart, End: aEnd}, TimeInterval{Start: bStart, End: bEnd})
}

// OverlapsISO applies the inclusive rule to ISO-8601 strings. An empty end is a
// missing end; any value that does not parse makes the result false.
func OverlapsISO(aStart, aEnd, bStart, bEnd string) bool {
	a, ok := parseInterval(aStart, aEnd)
	if !ok {
		return false
	}
	b, ok := parseInterval(bStart, bEnd)
	if !ok {
		return false
	}
	return RangesOverlapInclusive(a, b)
}

// IntervalsConflictStrict reports whether a and b conflict when both are read
// as half-open intervals: a.Start < b.End and a.End > b.Start. Back-to-back
// intervals do not conflict.
func IntervalsConflictStrict(a, b TimeInterval) bool {
	if !a.valid() || !b.valid() {
		return false
	}
	return a.Start.Before(b.EffectiveEnd()) && a.EffectiveEnd().After(b.Start)
}

func parseInterval(start, end string) (TimeInterval, bool) {
	s, ok := ParseISO(start)
	if !ok {
		return TimeInterval{}, false
	}
	if strings.TrimSpace(end) == "" {
		return Instant(s), true
	}
	e, ok := ParseISO(end)
	if !ok {
		return TimeInterval{}, false
	}
	return Between(s, e), true
}
