package geodesy

import "math"

// Transverse Mercator / UTM projection constants for the WGS84 ellipsoid.
const (
	utmSemiMajorAxis = 6378137.0
	utmFlattening    = 1 / 298.257223563
	utmScaleFactor   = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// Transformer converts between WGS84 lat/lng and planar UTM coordinates for a single
// zone and hemisphere, selected once at construction from a representative coordinate.
type Transformer struct {
	zone            int
	southern        bool
	centralMeridian float64 // radians
}

// NewTransformer builds a Transformer for the UTM zone and hemisphere appropriate for "at".
func NewTransformer(at LatLng) *Transformer {
	zone := UTMZoneFor(at.Lng)
	return &Transformer{
		zone:            zone,
		southern:        at.Lat < 0,
		centralMeridian: (float64(zone)*6 - 183) * degToRad,
	}
}

// Zone returns the UTM longitude zone this transformer was built for.
func (t *Transformer) Zone() int { return t.zone }

// ToUTM projects a WGS84 coordinate into this transformer's UTM zone, in meters.
func (t *Transformer) ToUTM(ll LatLng) Point {
	lat := ll.Lat * degToRad
	lon := ll.Lng * degToRad

	a := utmSemiMajorAxis
	f := utmFlattening
	e2 := f * (2 - f)
	ePrime2 := e2 / (1 - e2)

	n := a / math.Sqrt(1-e2*math.Sin(lat)*math.Sin(lat))
	tt := math.Tan(lat) * math.Tan(lat)
	c := ePrime2 * math.Cos(lat) * math.Cos(lat)
	aa := math.Cos(lat) * (lon - t.centralMeridian)

	m := a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*lat -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*lat) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*lat) -
		(35*e2*e2*e2/3072)*math.Sin(6*lat))

	easting := utmScaleFactor*n*(aa+(1-tt+c)*aa*aa*aa/6+
		(5-18*tt+tt*tt+72*c-58*ePrime2)*aa*aa*aa*aa*aa/120) + utmFalseEasting

	northing := utmScaleFactor * (m + n*math.Tan(lat)*(aa*aa/2+
		(5-tt+9*c+4*c*c)*aa*aa*aa*aa/24+
		(61-58*tt+tt*tt+600*c-330*ePrime2)*aa*aa*aa*aa*aa*aa/720))

	if t.southern {
		northing += utmFalseNorthing
	}

	return Point{X: easting, Y: northing}
}

// ToLatLng reprojects a point in this transformer's UTM zone back to WGS84.
func (t *Transformer) ToLatLng(p Point) LatLng {
	a := utmSemiMajorAxis
	f := utmFlattening
	e2 := f * (2 - f)
	ePrime2 := e2 / (1 - e2)
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	x := p.X - utmFalseEasting
	y := p.Y
	if t.southern {
		y -= utmFalseNorthing
	}

	m := y / utmScaleFactor
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu + (3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	n1 := a / math.Sqrt(1-e2*math.Sin(phi1)*math.Sin(phi1))
	t1 := math.Tan(phi1) * math.Tan(phi1)
	c1 := ePrime2 * math.Cos(phi1) * math.Cos(phi1)
	r1 := a * (1 - e2) / math.Pow(1-e2*math.Sin(phi1)*math.Sin(phi1), 1.5)
	d := x / (n1 * utmScaleFactor)

	lat := phi1 - (n1*math.Tan(phi1)/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ePrime2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ePrime2-3*c1*c1)*d*d*d*d*d*d/720)

	lon := t.centralMeridian + (d-(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ePrime2+24*t1*t1)*d*d*d*d*d/120)/math.Cos(phi1)

	return LatLng{Lat: lat * radToDeg, Lng: lon * radToDeg}
}
