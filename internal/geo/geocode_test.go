package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/banshee-data/gymwatch/internal/httputil"
)

func TestNominatimGeocoder_Resolve(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(200, `[{"lat":"52.5200066","lon":"13.404954","display_name":"Berlin, Deutschland"}]`)

	g := NewNominatimGeocoder("http://geo.test/search", mock)

	pos, err := g.Resolve(context.Background(), "Berlin, Germany")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if pos.Lat != 52.5200066 || pos.Lng != 13.404954 {
		t.Errorf("Resolve = %v, want (52.5200066, 13.404954)", pos)
	}

	req := mock.Requests[0]
	if got := req.URL.Query().Get("q"); got != "Berlin, Germany" {
		t.Errorf("query param q = %q, want %q", got, "Berlin, Germany")
	}
	if got := req.URL.Query().Get("format"); got != "json" {
		t.Errorf("query param format = %q, want json", got)
	}
}

func TestNominatimGeocoder_NoResults(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(200, `[]`)

	g := NewNominatimGeocoder("http://geo.test/search", mock)

	_, err := g.Resolve(context.Background(), "Nowhereville Qxzzt")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Resolve err = %v, want ErrLocationNotFound", err)
	}
}

func TestNominatimGeocoder_TransportError(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddErrorResponse(errors.New("dial tcp: connection refused"))

	g := NewNominatimGeocoder("http://geo.test/search", mock)

	if _, err := g.Resolve(context.Background(), "Berlin"); err == nil {
		t.Error("expected transport error")
	}
}

func TestNominatimGeocoder_BadStatus(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(503, "service unavailable")

	g := NewNominatimGeocoder("http://geo.test/search", mock)

	if _, err := g.Resolve(context.Background(), "Berlin"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestNominatimGeocoder_MalformedCoordinates(t *testing.T) {
	mock := httputil.NewMockHTTPClient()
	mock.AddResponse(200, `[{"lat":"not-a-number","lon":"13.4"}]`)

	g := NewNominatimGeocoder("http://geo.test/search", mock)

	if _, err := g.Resolve(context.Background(), "Berlin"); err == nil {
		t.Error("expected error for unparseable latitude")
	}
}
