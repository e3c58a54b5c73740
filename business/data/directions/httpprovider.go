package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HTTPProvider is a Provider backed by an OSRM-shaped directions service, reached
// over plain net/http (spec.md §6 "Directions provider"). This is the concrete
// adapter behind the Provider contract; app/fleet-sim wires it in when a real
// directions-provider URL is configured.
type HTTPProvider struct {
	BaseURL string // e.g. "https://router.example.org/route/v1/driving"
	Client  *http.Client
}

// NewHTTPProvider builds an HTTPProvider, defaulting Client to http.DefaultClient.
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{BaseURL: baseURL, Client: client}
}

// Route requests turn-by-turn directions for an ordered list of (lon, lat)
// waypoints, matching the coordinate-string-path convention OSRM-compatible
// services use: "lon,lat;lon,lat;...".
func (p *HTTPProvider) Route(ctx context.Context, waypoints []LonLat) (*Directions, error) {
	if len(waypoints) == 0 {
		return nil, errNoWaypoints
	}

	coords := make([]string, len(waypoints))
	for i, w := range waypoints {
		coords[i] = strconv.FormatFloat(w.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(w.Lat, 'f', -1, 64)
	}

	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(p.BaseURL, "/"), strings.Join(coords, ";"))
	q := url.Values{"annotations": {"speed,distance"}, "geometries": {"geojson"}, "overview": {"full"}}
	reqURL += "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("directions: building request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions: requesting route: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions: provider returned status %d", resp.StatusCode)
	}

	var d Directions
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("directions: decoding response: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("directions: provider response: %w", err)
	}
	return &d, nil
}
