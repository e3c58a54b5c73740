package vehicle

import (
	"log"
	"math"

	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
)

// Update advances the vehicle by the elapsed wall-clock time since
// LastCalculationEpochMillis, given nowEpochMillis as "now". It returns whether state
// was advanced; callers should skip writing the vehicle back to the store when it
// returns false (spec.md §4.3).
func (v *Vehicle) Update(vlog *log.Logger, rc *RouteContext, nowEpochMillis int64) (bool, error) {
	elapsedMs := nowEpochMillis - v.LastCalculationEpochMillis
	if elapsedMs <= 0 {
		return false, nil
	}
	dtSeconds := float64(elapsedMs) / 1000.0

	arrivedAtEnd := v.PositionLimited && (v.MetersOffset > 0 || rc.TotalDistance <= 0)
	if arrivedAtEnd {
		if v.MetersPerSecond == 0 {
			return false, nil
		}
		v.MetersPerSecond = rampToward(v.MetersPerSecond, 0, v.MssAcceleration, dtSeconds)
		v.LastCalculationEpochMillis = nowEpochMillis
		if v.MetersPerSecond == 0 && vlog != nil {
			vlog.Printf("vehicle %s arrived, offset=%.1f", v.ID, v.MetersOffset)
		}
		return true, nil
	}

	v.MetersPerSecond = rampToward(v.MetersPerSecond, v.MetersPerSecondDesired, v.MssAcceleration, dtSeconds)

	newOffset := v.MetersOffset + v.MetersPerSecond*dtSeconds
	if err := v.SetMetersOffset(rc, newOffset); err != nil {
		return false, err
	}

	v.DegBearing = geodesy.NormalizeDegrees(v.DegBearing)
	v.DegBearingDesired = geodesy.NormalizeDegrees(v.DegBearingDesired)
	v.DegBearing = rotateToward(v.DegBearing, v.DegBearingDesired, v.DegsPerSecondTurn, dtSeconds)

	v.LastCalculationEpochMillis = nowEpochMillis
	return true, nil
}

// rotateToward rotates current toward desired by the shortest angular path, by at
// most turnRate*dtSeconds degrees, clamping on arrival (spec.md §4.3).
func rotateToward(current, desired, turnRate, dtSeconds float64) float64 {
	diff := geodesy.ShortestAngleDifference(current, desired)
	maxTurn := turnRate * dtSeconds
	if math.Abs(diff) <= maxTurn {
		return desired
	}
	if diff > 0 {
		return geodesy.NormalizeDegrees(current + maxTurn)
	}
	return geodesy.NormalizeDegrees(current - maxTurn)
}

// rampToward moves current toward target by at most maxRate*dtSeconds, never overshooting.
func rampToward(current, target, maxRate, dtSeconds float64) float64 {
	diff := target - current
	maxDelta := maxRate * dtSeconds
	if math.Abs(diff) <= maxDelta {
		return target
	}
	if diff > 0 {
		return current + maxDelta
	}
	return current - maxDelta
}
