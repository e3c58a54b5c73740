package directions

import "errors"

var (
	errNoWaypoints        = errors.New("directions: response has no waypoints")
	errNoRoutes           = errors.New("directions: response has no routes")
	errAnnotationMismatch = errors.New("directions: leg annotation speed/distance length mismatch")
)
