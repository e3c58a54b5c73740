package routing

import (
	"testing"

	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
)

func TestNewLengthIndexedLineDedupesConsecutiveDuplicates(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{
		{X: 0, Y: 0},
		{X: 0, Y: 0},
		{X: 10, Y: 0},
	})
	if len(line.points) != 2 {
		t.Fatalf("len(points) = %d, want 2 after deduping the repeated origin", len(line.points))
	}
	if line.length() != 10 {
		t.Errorf("length() = %f, want 10", line.length())
	}
}

func TestPointAtInterior(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	got := line.pointAt(4)
	want := geodesy.Point{X: 4, Y: 0}
	if got != want {
		t.Errorf("pointAt(4) = %+v, want %+v", got, want)
	}
}

func TestPointAtExactVertexBoundary(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	})
	got := line.pointAt(10)
	want := geodesy.Point{X: 10, Y: 0}
	if got != want {
		t.Errorf("pointAt(10) at the vertex = %+v, want %+v", got, want)
	}
}

func TestPointAtClampsBelowZero(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	got := line.pointAt(-5)
	want := geodesy.Point{X: 0, Y: 0}
	if got != want {
		t.Errorf("pointAt(-5) = %+v, want start point %+v", got, want)
	}
}

func TestPointAtClampsBeyondLength(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{{X: 0, Y: 0}, {X: 10, Y: 0}})
	got := line.pointAt(1000)
	want := geodesy.Point{X: 10, Y: 0}
	if got != want {
		t.Errorf("pointAt(1000) = %+v, want end point %+v", got, want)
	}
}

func TestPointAtSinglePointLine(t *testing.T) {
	line := newLengthIndexedLine([]geodesy.Point{{X: 5, Y: 5}})
	if line.length() != 0 {
		t.Errorf("length() = %f, want 0 for a single-point line", line.length())
	}
	got := line.pointAt(10)
	want := geodesy.Point{X: 5, Y: 5}
	if got != want {
		t.Errorf("pointAt(10) = %+v, want the only point %+v", got, want)
	}
}

func TestPointAtEmptyLine(t *testing.T) {
	line := newLengthIndexedLine(nil)
	got := line.pointAt(0)
	if got != (geodesy.Point{}) {
		t.Errorf("pointAt(0) on an empty line = %+v, want the zero value", got)
	}
}
