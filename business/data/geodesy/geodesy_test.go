package geodesy

import (
	"math"
	"testing"
)

func TestUTMZoneFor(t *testing.T) {
	tests := []struct {
		name string
		lon  float64
		want int
	}{
		{"prime meridian", 0.0, 30},
		{"just west of prime meridian", -0.0001, 30},
		{"west edge", -180.0, 1},
		{"east edge", 179.999, 60},
		{"fort worth", -97.3286, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTMZoneFor(tt.lon); got != tt.want {
				t.Errorf("UTMZoneFor(%f) = %d, want %d", tt.lon, got, tt.want)
			}
		})
	}
}

func TestIsZoneChange(t *testing.T) {
	tests := []struct {
		name           string
		lonOld, lonNew float64
		want           bool
	}{
		{"same zone", -97.30, -97.33, false},
		{"crosses zone boundary", -96.1, -95.9, true},
		{"no change at zone interior", -95.5, -95.6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsZoneChange(tt.lonOld, tt.lonNew)
			want := UTMZoneFor(tt.lonOld) != UTMZoneFor(tt.lonNew)
			if got != tt.want || got != want {
				t.Errorf("IsZoneChange(%f, %f) = %v, want %v", tt.lonOld, tt.lonNew, got, tt.want)
			}
		})
	}
}

func TestTransformerRoundTrip(t *testing.T) {
	points := []LatLng{
		{Lat: 32.7507, Lng: -97.3286},
		{Lat: 32.80, Lng: -97.40},
		{Lat: 32.70, Lng: -97.20},
		{Lat: 47.6062, Lng: -122.3321},
	}
	for _, p := range points {
		transformer := NewTransformer(p)
		projected := transformer.ToUTM(p)
		roundTripped := transformer.ToLatLng(projected)
		if math.Abs(roundTripped.Lat-p.Lat) > 1e-6 {
			t.Errorf("round trip lat mismatch: got %f want %f", roundTripped.Lat, p.Lat)
		}
		if math.Abs(roundTripped.Lng-p.Lng) > 1e-6 {
			t.Errorf("round trip lng mismatch: got %f want %f", roundTripped.Lng, p.Lng)
		}
	}
}

func TestCoordinateAtBearingAndRangeIsAntipodal(t *testing.T) {
	center := LatLng{Lat: 32.7507, Lng: -97.3286}
	radiusKm := 50.0
	bearing := 45.0

	start, err := CoordinateAtBearingAndRange(center, radiusKm, bearing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	end, err := CoordinateAtBearingAndRange(center, radiusKm, bearing+180)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// start and end should lie on opposite bearings from the center.
	if got := InitialBearing(center, start); math.Abs(got-bearing) > 1e-6 {
		t.Errorf("bearing from center to start = %f, want %f", got, bearing)
	}
	if got := InitialBearing(center, end); math.Abs(got-(bearing+180)) > 1e-6 {
		t.Errorf("bearing from center to end = %f, want %f", got, bearing+180)
	}
	if math.Abs(start.Lat-end.Lat) < 0.01 && math.Abs(start.Lng-end.Lng) < 0.01 {
		t.Errorf("expected antipodal points to differ, got %v and %v", start, end)
	}
}

func TestValidateLatLng(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 45.0, -122.0, false},
		{"lat too high", 91.0, 0, true},
		{"lat too low", -91.0, 0, true},
		{"lng too high", 0, 181.0, true},
		{"lng too low", 0, -181.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLatLng(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLatLng(%f, %f) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestShortestAngleDifference(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		want     float64
	}{
		{"no change", 10, 10, 0},
		{"small positive", 10, 30, 20},
		{"small negative", 30, 10, -20},
		{"wraps forward over 0", 350, 10, 20},
		{"wraps backward over 0", 10, 350, -20},
		{"exact opposite", 0, 180, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortestAngleDifference(tt.from, tt.to)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ShortestAngleDifference(%f, %f) = %f, want %f", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
