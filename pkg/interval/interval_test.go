package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(s string) time.Time {
	t, ok := ParseISO(s)
	if !ok {
		panic("bad test timestamp " + s)
	}
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestRangesOverlapInclusive(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		name string
		a    TimeInterval
		b    TimeInterval
		want bool
	}{
		{
			name: "Partial overlap",
			a:    Between(base, base.Add(time.Hour)),
			b:    Between(base.Add(30*time.Minute), base.Add(2*time.Hour)),
			want: true,
		},
		{
			name: "Disjoint by one second",
			a:    Between(base, base.Add(time.Hour)),
			b:    Between(base.Add(time.Hour+time.Second), base.Add(2*time.Hour)),
			want: false,
		},
		{
			name: "Touching endpoints overlap",
			a:    Between(base, base.Add(time.Hour)),
			b:    Between(base.Add(time.Hour), base.Add(2*time.Hour)),
			want: true,
		},
		{
			name: "Containment",
			a:    Between(base, base.Add(4*time.Hour)),
			b:    Between(base.Add(time.Hour), base.Add(2*time.Hour)),
			want: true,
		},
		{
			name: "Coincident instants",
			a:    Instant(base),
			b:    Instant(base),
			want: true,
		},
		{
			name: "Instant inside range",
			a:    Instant(base.Add(30 * time.Minute)),
			b:    Between(base, base.Add(time.Hour)),
			want: true,
		},
		{
			name: "Instant at range end",
			a:    Instant(base.Add(time.Hour)),
			b:    Between(base, base.Add(time.Hour)),
			want: true,
		},
		{
			name: "Instant before range",
			a:    Instant(base.Add(-time.Minute)),
			b:    Between(base, base.Add(time.Hour)),
			want: false,
		},
		{
			name: "Zero start is not a point in time",
			a:    TimeInterval{},
			b:    Between(base, base.Add(time.Hour)),
			want: false,
		},
		{
			name: "Zero end is not a point in time",
			a:    TimeInterval{Start: base, End: &time.Time{}},
			b:    Between(base, base.Add(time.Hour)),
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RangesOverlapInclusive(tc.a, tc.b))
			assert.Equal(t, tc.want, RangesOverlapInclusive(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestRangesOverlapInclusive_Reflexive(t *testing.T) {
	base := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	for _, i := range []TimeInterval{
		Instant(base),
		Between(base, base.Add(time.Minute)),
		Between(base, base.Add(48*time.Hour)),
	} {
		assert.True(t, RangesOverlapInclusive(i, i))
	}
}

func TestRangesOverlapInclusive_Adjacency(t *testing.T) {
	t0 := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	for _, gaps := range [][2]time.Duration{{0, 0}, {time.Hour, 0}, {0, time.Hour}, {time.Hour, 2 * time.Hour}} {
		t1 := t0.Add(gaps[0])
		t2 := t1.Add(gaps[1])
		assert.True(t, Overlaps(t0, &t1, t1, &t2))
	}
}

func TestOverlaps_NilEnds(t *testing.T) {
	start := at("2024-01-01T10:00:00Z")

	assert.True(t, Overlaps(start, nil, at("2024-01-01T10:00:00Z"), nil))
	assert.False(t, Overlaps(start, nil, at("2024-01-01T10:00:01Z"), nil))
	assert.True(t, Overlaps(start, ptr(at("2024-01-01T11:00:00Z")), at("2024-01-01T10:30:00Z"), ptr(at("2024-01-01T12:00:00Z"))))
	assert.False(t, Overlaps(start, ptr(at("2024-01-01T11:00:00Z")), at("2024-01-01T11:00:01Z"), ptr(at("2024-01-01T12:00:00Z"))))
}

func TestOverlapsISO(t *testing.T) {
	assert.True(t, OverlapsISO("2024-01-01T10:00:00Z", "", "2024-01-01T10:00:00Z", ""))
	assert.True(t, OverlapsISO("2024-01-01T10:00:00Z", "2024-01-01T11:00:00Z", "2024-01-01T11:00:00Z", "2024-01-01T12:00:00Z"))
	assert.False(t, OverlapsISO("not-a-date", "", "2024-01-01T10:00:00Z", ""))
	assert.False(t, OverlapsISO("2024-01-01T10:00:00Z", "garbage", "2024-01-01T10:00:00Z", ""))
}

func TestIntervalsConflictStrict(t *testing.T) {
	base := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)
	meeting := Between(base, base.Add(time.Hour))

	assert.True(t, IntervalsConflictStrict(meeting, Between(base.Add(30*time.Minute), base.Add(90*time.Minute))))
	assert.False(t, IntervalsConflictStrict(meeting, Between(base.Add(time.Hour), base.Add(2*time.Hour))), "back-to-back after")
	assert.False(t, IntervalsConflictStrict(meeting, Between(base.Add(-time.Hour), base)), "back-to-back before")
	assert.True(t, IntervalsConflictStrict(meeting, Instant(base.Add(30*time.Minute))), "instant strictly inside")
	assert.False(t, IntervalsConflictStrict(meeting, Instant(base)), "instant at start")
}

func TestTimeInterval_IsValidRange(t *testing.T) {
	base := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)

	assert.True(t, Between(base, base.Add(time.Second)).IsValidRange())
	assert.False(t, Between(base, base).IsValidRange())
	assert.False(t, Between(base.Add(time.Hour), base).IsValidRange())
	assert.False(t, Instant(base).IsValidRange())
	assert.False(t, TimeInterval{}.IsValidRange())
}

func TestParseISO(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-01T00:00:00.000Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-01T10:00:00+02:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), true},
		{"2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"not-a-date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseISO(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "2024-01-01T12:00:00.000Z", FormatISO(time.Date(2024, 1, 1, 14, 0, 0, 0, loc)))
}
