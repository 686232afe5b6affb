package interval

// Slot is a busy or proposed time range as it travels through the API and
// storage: ISO-8601 strings that may or may not parse. ID optionally names
// where the slot came from (an event id, a calendar id).
type Slot struct {
	ID    string `json:"id,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Interval parses the slot. The second result is false when either bound does
// not parse.
func (s Slot) Interval() (TimeInterval, bool) {
	start, ok := ParseISO(s.Start)
	if !ok {
		return TimeInterval{}, false
	}
	end, ok := ParseISO(s.End)
	if !ok {
		return TimeInterval{}, false
	}
	return Between(start, end), true
}

// FindConflicts returns the busy slots that conflict with proposed under the
// strict rule, in input order. The returned values are the input slots
// themselves.
//
// A proposal that does not parse, or whose start is not before its end, has no
// conflicts. Busy slots whose bounds do not parse are skipped.
func FindConflicts(proposed Slot, busySlots []Slot) []Slot {
	conflicts := make([]Slot, 0)
	p, ok := proposed.Interval()
	if !ok || !p.IsValidRange() {
		return conflicts
	}

	for _, slot := range busySlots {
		busy, ok := slot.Interval()
		if !ok {
			continue
		}
		if IntervalsConflictStrict(p, busy) {
			conflicts = append(conflicts, slot)
		}
	}
	return conflicts
}

// IsTimeSlotFree reports whether start..end conflicts with none of busySlots
// under the strict rule. A proposal that does not parse, or whose start is not
// before its end, is never free.
func IsTimeSlotFree(start, end string, busySlots []Slot) bool {
	p, ok := Slot{Start: start, End: end}.Interval()
	if !ok || !p.IsValidRange() {
		return false
	}

	for _, slot := range busySlots {
		busy, ok := slot.Interval()
		if !ok {
			continue
		}
		if IntervalsConflictStrict(p, busy) {
			return false
		}
	}
	return true
}
