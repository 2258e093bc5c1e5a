// Package funding holds a sorted (ts, rate) schedule and the payment math
// applied to open positions every 8h.
package funding

import (
	"fmt"
	"sort"
)

// IntervalMs is the funding accrual cadence.
const IntervalMs = 8 * 3600 * 1000

// Point is one historical funding rate observation.
type Point struct {
	TsMs int64
	Rate float64
}

// Schedule is a sorted, deduplicated sequence of funding points covering a
// run's time range. Queries are O(log n).
type Schedule struct {
	points []Point
}

func NewSchedule() *Schedule {
	return &Schedule{}
}

func NewScheduleFromPoints(points []Point) *Schedule {
	s := &Schedule{points: append([]Point(nil), points...)}
	s.sort()
	return s
}

// AddPoint inserts a point, keeping the schedule sorted by timestamp.
func (s *Schedule) AddPoint(tsMs int64, rate float64) {
	s.points = append(s.points, Point{TsMs: tsMs, Rate: rate})
	s.sort()
}

func (s *Schedule) sort() {
	sort.SliceStable(s.points, func(i, j int) bool { return s.points[i].TsMs < s.points[j].TsMs })
	// Drop duplicate timestamps, keeping the most recently added point.
	out := s.points[:0]
	for i, p := range s.points {
		if i+1 < len(s.points) && s.points[i+1].TsMs == p.TsMs {
			continue
		}
		out = append(out, p)
	}
	s.points = out
}

// RateAt returns the most recent rate at or before tsMs. ok is false if
// tsMs precedes the schedule's first point: that is "no coverage", not an
// implicit zero rate (see DESIGN.md — funding-fetch degraded mode decides
// what to do with that).
func (s *Schedule) RateAt(tsMs int64) (float64, bool) {
	// last point with TsMs <= tsMs
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].TsMs > tsMs })
	if i == 0 {
		return 0, false
	}
	return s.points[i-1].Rate, true
}

// CalculatePayment returns notional*rate for the rate in effect at tsMs.
// The caller applies the sign convention (long pays, short receives).
func (s *Schedule) CalculatePayment(notional float64, tsMs int64) (float64, error) {
	rate, ok := s.RateAt(tsMs)
	if !ok {
		return 0, fmt.Errorf("funding: no rate coverage at ts_ms=%d", tsMs)
	}
	return notional * rate, nil
}

// Covers reports whether the schedule has at least one point at or before
// startMs, i.e. can answer RateAt for the whole [startMs, endMs] range.
func (s *Schedule) Covers(startMs int64) bool {
	_, ok := s.RateAt(startMs)
	return ok
}

func (s *Schedule) Len() int { return len(s.points) }
