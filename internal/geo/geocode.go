package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/banshee-data/gymwatch/internal/httputil"
	"github.com/banshee-data/gymwatch/internal/monitoring"
)

// ErrLocationNotFound is returned when the geocoding service has no match for
// a location query. Callers treat this as a configuration error.
var ErrLocationNotFound = errors.New("location not found")

// DefaultGeocoderURL is the Nominatim-compatible search endpoint used when no
// override is configured.
const DefaultGeocoderURL = "https://nominatim.openstreetmap.org/search"

// Geocoder resolves a human-readable location string to a Position.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (Position, error)
}

// NominatimGeocoder resolves locations against a Nominatim-style search API.
type NominatimGeocoder struct {
	baseURL string
	client  httputil.HTTPClient
}

// NewNominatimGeocoder creates a geocoder against the given endpoint. An empty
// baseURL falls back to DefaultGeocoderURL; a nil client falls back to the
// standard HTTP client.
func NewNominatimGeocoder(baseURL string, client httputil.HTTPClient) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocoderURL
	}
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &NominatimGeocoder{baseURL: baseURL, client: client}
}

// nominatimResult is the subset of the search response we care about.
// Nominatim encodes coordinates as strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the best match for the query. No matches is
// ErrLocationNotFound; a match with unparseable coordinates is a hard error.
func (g *NominatimGeocoder) Resolve(ctx context.Context, query string) (Position, error) {
	u := fmt.Sprintf("%s?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Position{}, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "gymwatch")

	resp, err := g.client.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, fmt.Errorf("reading geocode response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Position{}, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(results) == 0 {
		return Position{}, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Position{}, fmt.Errorf("parsing geocode latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Position{}, fmt.Errorf("parsing geocode longitude %q: %w", results[0].Lon, err)
	}

	pos := Position{Lat: lat, Lng: lng}
	if err := pos.Validate(); err != nil {
		return Position{}, fmt.Errorf("geocoder returned %v: %w", pos, err)
	}

	monitoring.Debugf("geocoded %q to %v (%s)", query, pos, results[0].DisplayName)
	return pos, nil
}
