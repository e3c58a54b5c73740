// Package vehicle implements the per-vehicle kinematic state machine: advancing
// position along a route, tracking speed and bearing toward their posted/desired
// values, and detecting arrival (spec.md §3, §4.3).
package vehicle

import (
	"math"
	"math/rand"

	"github.com/OpenTransitTools/fleetsim/business/data/routing"
)

// DefaultAcceleration is the default peak |d speed/dt| in meters/second^2 (spec.md §3).
const DefaultAcceleration = 2.0

// DefaultTurnRate is the default peak bearing turn rate in degrees/second (spec.md §3).
const DefaultTurnRate = 120.0

// Vehicle is the persistent, serializable simulation state for one simulated vehicle
// (spec.md §3). Every field here is written to the shared store; derived artifacts
// (Directions, segments) are held separately in the per-instance cache and passed
// into SetMetersOffset/Update as a RouteContext.
type Vehicle struct {
	ID          string `json:"id"`
	TripPlanRef string `json:"tripPlanRef"`

	MetersOffset    float64 `json:"metersOffset"`
	PositionLimited bool    `json:"positionLimited"`
	PositionValid   bool    `json:"positionValid"`

	DegLatitude  float64 `json:"degLatitude"`
	DegLongitude float64 `json:"degLongitude"`

	MetersPerSecond        float64 `json:"metersPerSecond"`
	MetersPerSecondDesired float64 `json:"metersPerSecondDesired"`
	MssAcceleration        float64 `json:"mssAcceleration"`

	DegBearing        float64 `json:"degBearing"`
	DegBearingDesired float64 `json:"degBearingDesired"`
	DegsPerSecondTurn float64 `json:"degsPerSecondTurn"`

	ColorCode string `json:"colorCode"`

	LastCalculationEpochMillis int64  `json:"lastCalculationEpochMillis"`
	ManagerHost                string `json:"managerHost"`
	LastNsExecutionTime        int64  `json:"lastNsExecutionTime"`

	// havePosition tracks whether DegLatitude/DegLongitude hold a previously resolved
	// position, so the first SetMetersOffset call never overwrites DegBearingDesired
	// from a nonsensical "previous" point.
	havePosition bool
}

// New constructs a Vehicle at offset 0 with default acceleration/turn-rate and a
// stable random display color (spec.md §3).
func New(id, tripPlanRef string, nowEpochMillis int64, managerHost string) *Vehicle {
	return &Vehicle{
		ID:                         id,
		TripPlanRef:                tripPlanRef,
		MssAcceleration:            DefaultAcceleration,
		DegsPerSecondTurn:          DefaultTurnRate,
		ColorCode:                  randomColorCode(),
		LastCalculationEpochMillis: nowEpochMillis,
		ManagerHost:                managerHost,
	}
}

// MarkPositioned records that DegLatitude/DegLongitude already hold a resolved
// position. The shared store calls this after deserializing a Vehicle, since any
// persisted vehicle was positioned at least once before it was first written
// (spec.md §4.8 CreateVehicle always resolves offset 0 before persisting).
func (v *Vehicle) MarkPositioned() {
	v.havePosition = true
}

// randomColorCode picks a hex RGB color from a random hue with saturation ~0.9 and
// brightness ~1.0 (spec.md §3).
func randomColorCode() string {
	hue := rand.Float64()
	saturation := 0.9
	brightness := 1.0
	r, g, b := hsbToRGB(hue, saturation, brightness)
	return rgbToHex(r, g, b)
}

func hsbToRGB(h, s, v float64) (r, g, b float64) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func rgbToHex(r, g, b float64) string {
	clamp := func(c float64) int {
		v := int(math.Round(c * 255))
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return v
	}
	const hexDigits = "0123456789abcdef"
	toHex := func(v int) string {
		return string([]byte{hexDigits[v/16], hexDigits[v%16]})
	}
	return "#" + toHex(clamp(r)) + toHex(clamp(g)) + toHex(clamp(b))
}

// RouteContext bundles the non-serializable derived data the kinematic model needs
// on every call: the route's segments and its waypoint endpoints, resolved from the
// per-instance cache (spec.md §9 "Cyclic references").
type RouteContext struct {
	Segments      []*routing.Segment
	TotalDistance float64
	Origin        LatLng
	Destination   LatLng
	Legs          []LegSpeeds
}

// LatLng is a plain coordinate pair, decoupled from the geodesy package's type to
// keep RouteContext constructible from outside business/data/geodesy if needed.
type LatLng struct {
	Lat float64
	Lng float64
}

// LegSpeeds is the per-leg annotation data SetMetersOffset walks to resolve
// MetersPerSecondDesired at a given offset (spec.md §4.3).
type LegSpeeds struct {
	Speed    []float64
	Distance []float64
}
