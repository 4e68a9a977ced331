package candidates

import (
	"testing"
	"time"

	"github.com/aerovane/skedcore/internal/platform/config"
)

func TestIntervalOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b interval
		want bool
	}{
		{
			name: "disjoint",
			a:    interval{Start: base, End: base.Add(time.Hour)},
			b:    interval{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
			want: false,
		},
		{
			name: "adjacent, half-open so no overlap",
			a:    interval{Start: base, End: base.Add(time.Hour)},
			b:    interval{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)},
			want: false,
		},
		{
			name: "overlapping",
			a:    interval{Start: base, End: base.Add(2 * time.Hour)},
			b:    interval{Start: base.Add(time.Hour), End: base.Add(3 * time.Hour)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.overlaps(tt.b); got != tt.want {
				t.Errorf("overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		b    time.Time
		want int
	}{
		{"same day", time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC), 0},
		{"next day", time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC), 1},
		{"previous day, reversed order still positive", time.Date(2026, 2, 28, 1, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysBetween(a, tt.b); got != tt.want {
				t.Errorf("daysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHourDeltaMod24(t *testing.T) {
	a := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		b    time.Time
		want int
	}{
		{"same time", time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC), 0},
		{"2 hours later", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), 2},
		{"1 hour earlier", time.Date(2026, 3, 5, 7, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hourDeltaMod24(a, tt.b); got != tt.want {
				t.Errorf("hourDeltaMod24() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	original := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) // Sunday

	tests := []struct {
		name      string
		candidate time.Time
		minWant   int
	}{
		{"same day same hour", original, 100},
		{"same day, 3 hours later", original.Add(3 * time.Hour), 80},
		{"one week later, same weekday and hour", original.AddDate(0, 0, 7), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score(original, tt.candidate, time.Hour, 15*time.Minute)
			if got < 0 || got > 100 {
				t.Fatalf("score() = %d, out of [0,100] range", got)
			}
			if tt.name == "same day same hour" && got != tt.minWant {
				t.Errorf("score() = %d, want %d", got, tt.minWant)
			}
		})
	}
}

func TestFreeIntervalsWithin(t *testing.T) {
	window := interval{
		Start: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	committed := []interval{
		{Start: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Start: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)},
	}

	free := freeIntervalsWithin(window, committed)
	if len(free) != 3 {
		t.Fatalf("freeIntervalsWithin() returned %d intervals, want 3", len(free))
	}
	if !free[0].Start.Equal(window.Start) || !free[0].End.Equal(committed[0].Start) {
		t.Errorf("first free interval = %+v, want [%v,%v]", free[0], window.Start, committed[0].Start)
	}
	if !free[2].End.Equal(window.End) {
		t.Errorf("last free interval end = %v, want %v", free[2].End, window.End)
	}
}

func TestFreeSlots(t *testing.T) {
	g := &Generator{
		tunables: config.Tunables{
			OperatingStartHourUTC: 13,
			OperatingEndHourUTC:   21,
		},
	}

	windowStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	duration := 2 * time.Hour

	slots := g.freeSlots(windowStart, windowEnd, duration, nil)
	if len(slots) != 4 {
		t.Fatalf("freeSlots() returned %d slots, want 4 (8 hour window / 2 hour duration)", len(slots))
	}
	for _, s := range slots {
		if s.Start.Hour() < 13 || s.End.Hour() > 21 {
			t.Errorf("slot %+v falls outside the operating window", s)
		}
	}
}

func TestCertificationOK(t *testing.T) {
	if !certificationOK("student", nil) {
		t.Error("student level should never require a certification check")
	}
}
