package routing

import (
	"math"
	"sort"

	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
)

// lengthIndexedLine is a polyline in planar (UTM) meters, augmented with a cumulative
// arclength table so that PointAt(s) can be answered in O(log K).
type lengthIndexedLine struct {
	points           []geodesy.Point
	cumulativeLength []float64 // cumulativeLength[i] is the arclength from points[0] to points[i]
}

// newLengthIndexedLine builds a lengthIndexedLine from a sequence of planar points.
// Consecutive duplicate points are dropped since they contribute no arclength.
func newLengthIndexedLine(points []geodesy.Point) *lengthIndexedLine {
	deduped := make([]geodesy.Point, 0, len(points))
	for _, p := range points {
		if len(deduped) > 0 && deduped[len(deduped)-1] == p {
			continue
		}
		deduped = append(deduped, p)
	}

	cumulative := make([]float64, len(deduped))
	for i := 1; i < len(deduped); i++ {
		cumulative[i] = cumulative[i-1] + distance(deduped[i-1], deduped[i])
	}

	return &lengthIndexedLine{points: deduped, cumulativeLength: cumulative}
}

// length returns the total arclength of the line in meters.
func (l *lengthIndexedLine) length() float64 {
	if len(l.cumulativeLength) == 0 {
		return 0
	}
	return l.cumulativeLength[len(l.cumulativeLength)-1]
}

// pointAt returns the point on the line at arclength s from its start, clamping
// s into [0, length()].
func (l *lengthIndexedLine) pointAt(s float64) geodesy.Point {
	if len(l.points) == 0 {
		return geodesy.Point{}
	}
	if len(l.points) == 1 {
		return l.points[0]
	}
	if s <= 0 {
		return l.points[0]
	}
	total := l.length()
	if s >= total {
		return l.points[len(l.points)-1]
	}

	// largest index i such that cumulativeLength[i] <= s
	i := sort.Search(len(l.cumulativeLength), func(i int) bool {
		return l.cumulativeLength[i] > s
	}) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(l.points)-1 {
		return l.points[len(l.points)-1]
	}

	segStart := l.cumulativeLength[i]
	segLen := l.cumulativeLength[i+1] - segStart
	if segLen <= 0 {
		return l.points[i]
	}
	t := (s - segStart) / segLen
	a := l.points[i]
	b := l.points[i+1]
	return geodesy.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func distance(a, b geodesy.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}
