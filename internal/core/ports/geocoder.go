package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Geocoder that understood the request but found no match.
var ErrNotFound = errors.New("address not found")

// GeocodeResult is a resolved point. NormalizedAddress may be empty.
type GeocodeResult struct {
	Lat               float64
	Lng               float64
	NormalizedAddress string
}

// Geocoder resolves free-text addresses. Implementations are rate sensitive:
// callers issue at most one request per user action or batch tick.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}
