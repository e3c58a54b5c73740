package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// HTTPGeocoder is a Geocoder backed by a Nominatim-shaped search endpoint, reached
// over plain net/http (spec.md §6 "Geocoder"). Results are not cached: every call for
// an Address without coordinates sends a new request.
type HTTPGeocoder struct {
	BaseURL string // e.g. "https://nominatim.example.org/search"
	APIKey  string
	Client  *http.Client
}

// NewHTTPGeocoder builds an HTTPGeocoder, defaulting Client to http.DefaultClient.
func NewHTTPGeocoder(baseURL, apiKey string, client *http.Client) *HTTPGeocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGeocoder{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves addr's street fields to coordinates, returning a copy of addr
// with Source set to "geocoded" and Lat/Lng populated (spec.md §3, §6).
func (g *HTTPGeocoder) Geocode(ctx context.Context, addr Address) (Address, error) {
	if addr.HasCoordinates() {
		return addr, nil
	}

	q := url.Values{"format": {"json"}, "limit": {"1"}}
	q.Set("q", addressQuery(addr))
	if g.APIKey != "" {
		q.Set("key", g.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Address{}, fmt.Errorf("geocoder: building request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("geocoder: requesting geocode: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("geocoder: provider returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Address{}, fmt.Errorf("geocoder: decoding response: %w", err)
	}
	if len(results) == 0 {
		return Address{}, fmt.Errorf("geocoder: no match for %q", addressQuery(addr))
	}

	lat, lng, err := parseLatLng(results[0].Lat, results[0].Lon)
	if err != nil {
		return Address{}, fmt.Errorf("geocoder: parsing coordinates: %w", err)
	}

	resolved := addr
	resolved.Source = "geocoded"
	resolved.Lat = lat
	resolved.Lng = lng
	return resolved, nil
}

func addressQuery(addr Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{addr.Street, addr.City, addr.State, addr.Zip} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func parseLatLng(latStr, lonStr string) (lat, lng float64, err error) {
	if _, err = fmt.Sscanf(latStr, "%f", &lat); err != nil {
		return 0, 0, fmt.Errorf("parsing lat %q: %w", latStr, err)
	}
	if _, err = fmt.Sscanf(lonStr, "%f", &lng); err != nil {
		return 0, 0, fmt.Errorf("parsing lon %q: %w", lonStr, err)
	}
	return lat, lng, nil
}
