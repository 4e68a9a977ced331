package candidates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/repositories"
)

// Generator searches for viable reschedule slots for a flight.
type Generator struct {
	flights     *repositories.FlightRepository
	students    *repositories.StudentRepository
	instructors *repositories.InstructorRepository
	aircraft    *repositories.AircraftRepository
	tunables    config.Tunables
	metrics     *observability.Metrics
}

// NewGenerator constructs a Generator.
func NewGenerator(
	flights *repositories.FlightRepository,
	students *repositories.StudentRepository,
	instructors *repositories.InstructorRepository,
	aircraft *repositories.AircraftRepository,
	tunables config.Tunables,
) *Generator {
	return &Generator{
		flights:     flights,
		students:    students,
		instructors: instructors,
		aircraft:    aircraft,
		tunables:    tunables,
		metrics:     observability.GetMetrics(),
	}
}

// certificationRequired maps a training level to the certification an
// instructor must hold; the student level requires none (any instructor
// passes).
var certificationRequired = map[string]string{
	"private":    "private",
	"instrument": "instrument",
}

// Generate enumerates instructor/aircraft/slot triples satisfying
// certification, availability, operating-window, and minimum-spacing
// constraints, scores, caps, and orders the result.
func (g *Generator) Generate(ctx context.Context, flightID int64) (*Set, error) {
	flight, err := g.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load flight %d: %w", flightID, err)
	}
	if flight == nil {
		return &Set{ErrorReason: "flight not found"}, nil
	}

	student, err := g.students.GetByID(ctx, flight.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load student %d: %w", flight.StudentID, err)
	}

	duration := flight.ArrivalTime.Sub(flight.DepartureTime)
	windowStart := flight.DepartureTime.AddDate(0, 0, -g.tunables.SearchWindowDays)
	windowEnd := flight.DepartureTime.AddDate(0, 0, g.tunables.SearchWindowDays)
	minSpacing := time.Duration(g.tunables.MinimumSpacingHours) * time.Hour
	durationTolerance := time.Duration(g.tunables.DurationToleranceMinutes) * time.Minute

	allInstructors, err := g.instructors.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}

	var candidates []Candidate

	for _, inst := range allInstructors {
		if !certificationOK(student.TrainingLevel, inst) {
			continue
		}

		committed, err := g.instructors.CommittedFlights(ctx, inst.ID, windowStart, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("load instructor %d committed flights: %w", inst.ID, err)
		}
		committedIntervals := flightIntervals(committed)

		slots := g.freeSlots(windowStart, windowEnd, duration, committedIntervals)

		for _, slot := range slots {
			if absDuration(slot.Start.Sub(flight.DepartureTime)) < minSpacing {
				continue
			}

			if len(candidates) >= g.tunables.MaxCandidates {
				break
			}

			aircraftCandidates, err := g.aircraftFor(ctx, slot, duration, windowStart, windowEnd)
			if err != nil {
				return nil, err
			}

			for _, aircraftID := range aircraftCandidates {
				if len(candidates) >= g.tunables.MaxCandidates {
					break
				}
				confidence := score(flight.DepartureTime, slot.Start, duration, durationTolerance)
				candidates = append(candidates, Candidate{
					InstructorID:        inst.ID,
					AircraftID:          aircraftID,
					DepartureTime:       slot.Start,
					ArrivalTime:         slot.Start.Add(duration),
					Confidence:          confidence,
					InstructorAvailable: true,
					AircraftAvailable:   true,
					CertificationValid:  true,
					WithinTimeWindow:    true,
					MinimumSpacingMet:   true,
				})
			}
		}

		if len(candidates) >= g.tunables.MaxCandidates {
			break
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].DepartureTime.Before(candidates[j].DepartureTime)
	})

	if len(candidates) > g.tunables.MaxCandidates {
		candidates = candidates[:g.tunables.MaxCandidates]
	}
	for i := range candidates {
		candidates[i].SlotIndex = i
	}

	g.metrics.CandidatesGenerated.Observe(float64(len(candidates)))

	return &Set{
		OriginalFlightID:      flight.ID,
		OriginalDepartureTime: flight.DepartureTime,
		Candidates:            candidates,
	}, nil
}

func certificationOK(trainingLevel string, inst *db.Instructor) bool {
	required, needsCert := certificationRequired[trainingLevel]
	if !needsCert {
		return true
	}
	certs, err := repositories.Certifications(inst)
	if err != nil {
		return false
	}
	for _, c := range certs {
		if c == required {
			return true
		}
	}
	return false
}

func flightIntervals(flights []*db.Flight) []interval {
	out := make([]interval, 0, len(flights))
	for _, f := range flights {
		out = append(out, interval{Start: f.DepartureTime, End: f.ArrivalTime})
	}
	return out
}

// aircraftFor returns aircraft ids usable for the given slot: available and
// with no committed interval overlapping (slotStart, slotEnd) half-open.
func (g *Generator) aircraftFor(ctx context.Context, slot interval, duration time.Duration, windowStart, windowEnd time.Time) ([]int64, error) {
	available, err := g.aircraft.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available aircraft: %w", err)
	}

	var usable []int64
	for _, a := range available {
		committed, err := g.aircraft.CommittedFlights(ctx, a.ID, windowStart, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("load aircraft %d committed flights: %w", a.ID, err)
		}

		conflict := false
		for _, c := range committed {
			if slot.overlaps(interval{Start: c.DepartureTime, End: c.ArrivalTime}) {
				conflict = true
				break
			}
		}
		if !conflict {
			usable = append(usable, a.ID)
		}
	}
	return usable, nil
}

// freeSlots walks each day in [windowStart, windowEnd], intersects the
// operating window with free time between committed flights, and steps
// candidate start times by duration through each free interval.
func (g *Generator) freeSlots(windowStart, windowEnd time.Time, duration time.Duration, committed []interval) []interval {
	var slots []interval

	startHour := g.tunables.OperatingStartHourUTC
	endHour := g.tunables.OperatingEndHourUTC

	day := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(windowEnd.Year(), windowEnd.Month(), windowEnd.Day(), 0, 0, 0, 0, time.UTC)

	for !day.After(last) {
		dayWindow := interval{
			Start: day.Add(time.Duration(startHour) * time.Hour),
			End:   day.Add(time.Duration(endHour) * time.Hour),
		}

		free := freeIntervalsWithin(dayWindow, committed)
		for _, fi := range free {
			for t := fi.Start; !t.Add(duration).After(fi.End); t = t.Add(duration) {
				if !t.Before(dayWindow.Start) && !t.Add(duration).After(dayWindow.End) {
					slots = append(slots, interval{Start: t, End: t.Add(duration)})
				}
			}
		}

		day = day.AddDate(0, 0, 1)
	}

	return slots
}

// freeIntervalsWithin computes the complement of committed inside window.
func freeIntervalsWithin(window interval, committed []interval) []interval {
	var relevant []interval
	for _, c := range committed {
		if c.overlaps(window) {
			s, e := c.Start, c.End
			if s.Before(window.Start) {
				s = window.Start
			}
			if e.After(window.End) {
				e = window.End
			}
			relevant = append(relevant, interval{Start: s, End: e})
		}
	}

	sort.Slice(relevant, func(i, j int) bool { return relevant[i].Start.Before(relevant[j].Start) })

	var free []interval
	cursor := window.Start
	for _, r := range relevant {
		if r.Start.After(cursor) {
			free = append(free, interval{Start: cursor, End: r.Start})
		}
		if r.End.After(cursor) {
			cursor = r.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, interval{Start: cursor, End: window.End})
	}
	return free
}

// score computes confidence (0-100) from day offset, time-of-day delta,
// and weekday alignment between the original and candidate slot.
func score(original, candidate time.Time, duration, durationTolerance time.Duration) int {
	dayOffset := daysBetween(original, candidate)

	confidence := 0
	switch {
	case dayOffset == 0:
		confidence = 100
	case dayOffset == 1:
		confidence = 80
	case dayOffset <= 3:
		confidence = 60
	case dayOffset <= 5:
		confidence = 40
	default:
		confidence = 20
	}

	hourDelta := hourDeltaMod24(original, candidate)
	switch {
	case hourDelta <= 2:
		// no change
	case hourDelta <= 4:
		confidence -= 10
	default:
		confidence -= 20
	}

	// Duration alignment: all generated slots already match the original
	// lesson's duration exactly by construction (freeSlots steps by
	// `duration`), so this is always an exact match; the tolerance
	// parameter exists for instructable deviation in future candidate
	// sources and stays part of the signature for that reason.
	_ = durationTolerance
	confidence += 5
	if confidence > 100 {
		confidence = 100
	}

	if dayOffset != 0 && original.Weekday() == candidate.Weekday() {
		confidence += 5
		if confidence > 100 {
			confidence = 100
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := bd.Sub(ad).Hours() / 24
	if diff < 0 {
		diff = -diff
	}
	return int(diff)
}

func hourDeltaMod24(a, b time.Time) int {
	delta := (b.Hour()*60 + b.Minute()) - (a.Hour()*60 + a.Minute())
	if delta < 0 {
		delta = -delta
	}
	deltaHours := delta / 60
	if deltaHours > 12 {
		deltaHours = 24 - deltaHours
	}
	return deltaHours
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
