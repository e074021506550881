// Package geocode turns coordinates into human readable addresses and search
// text into candidate places. Lookups never surface errors to the UI: a failed
// reverse lookup resolves to a fallback label instead.
package geocode

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"geographia/internal/domain"
)

// FallbackLabel is shown wherever an address could not be resolved
const FallbackLabel = "Ubicación no compartida"

var (
	// ErrUnresolved marks an Address that carries the fallback label
	ErrUnresolved = errors.New("geocode: address unresolved")
	// ErrGeolocationUnsupported is returned when the device has no geolocator
	ErrGeolocationUnsupported = errors.New("geocode: geolocation not supported")
	// ErrPermissionDenied is returned when the user declined to share their position
	ErrPermissionDenied = errors.New("geocode: geolocation permission denied")
)

// Candidate is one geocoding match
type Candidate struct {
	Label       string // what the UI shows
	FullAddress string // street level address when the provider has one
	Point       domain.Point
}

// Result is the outcome of one forward search
type Result struct {
	Query      string
	Candidates []Candidate
	Err        error
}

// Address is the outcome of a reverse lookup. Resolved is false when Label is
// the fallback label, in which case Err wraps ErrUnresolved.
type Address struct {
	Label       string
	FullAddress string
	Point       domain.Point
	Resolved    bool
	Err         error
}

// Provider is a geocoding backend
type Provider interface {
	// Forward searches for places matching text
	Forward(ctx context.Context, text string) ([]Candidate, error)
	// Reverse returns the places at a coordinate, best match first
	Reverse(ctx context.Context, lat, lng float64) ([]Candidate, error)
}

// Geolocator reports the device position
type Geolocator interface {
	Locate(ctx context.Context) (domain.Point, error)
}

// GeolocatorFunc adapts a function to Geolocator
type GeolocatorFunc func(ctx context.Context) (domain.Point, error)

func (f GeolocatorFunc) Locate(ctx context.Context) (domain.Point, error) { return f(ctx) }

// StaticGeolocator always reports the same position
type StaticGeolocator domain.Point

func (g StaticGeolocator) Locate(ctx context.Context) (domain.Point, error) {
	if err := ctx.Err(); err != nil {
		return domain.Point{}, err
	}
	return domain.Point(g), nil
}

// DeniedGeolocator models a user who does not share their position
type DeniedGeolocator struct{}

func (DeniedGeolocator) Locate(context.Context) (domain.Point, error) {
	return domain.Point{}, ErrPermissionDenied
}

// cacheKey rounds to 5 decimals, roughly a metre
func cacheKey(lat, lng float64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(lat, 'f', 5, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(lng, 'f', 5, 64))
	return b.String()
}
