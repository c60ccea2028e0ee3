package kernel

import (
	"errors"
	"fmt"
	"math"

	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

const (
	// EarthRadiusMeters is the sphere radius used for haversine distances.
	EarthRadiusMeters = 6_371_000.0

	// LatitudeMin is the southern bound of a valid latitude.
	LatitudeMin = -90.0
	// LatitudeMax is the northern bound of a valid latitude.
	LatitudeMax = 90.0
	// LongitudeMin is the western bound of a valid longitude.
	LongitudeMin = -180.0
	// LongitudeMax is the eastern bound of a valid longitude.
	LongitudeMax = 180.0
)

// ErrCoordinatesIsNotConstructed is returned when a zero-value Coordinates is used.
var ErrCoordinatesIsNotConstructed = errs.NewValueIsRequiredError(
	"coordinates must be created via NewCoordinates or NewFixedCoordinates constructors")

// Coordinates is an immutable geographic point in degrees plus a flag telling
// whether it was corrected by hand (fixed) or resolved automatically.
//
// Latitude and longitude always travel together: an item either holds a complete
// Coordinates value or none at all.
//
// Example:
//
//	c, err := kernel.NewCoordinates(35.6812, 139.7671)
//	if err != nil {
//	    // out of range
//	}
//	meters, _ := c.DistanceMeters(other)
type Coordinates struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	fixed bool
	guard guard.ConstructorGuard
}

// NewCoordinates creates an automatically resolved point.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	return newCoordinates(lat, lng, false)
}

// NewFixedCoordinates creates a point that an operator corrected by hand.
// Fixed points are never replaced by automatic resolution.
func NewFixedCoordinates(lat, lng float64) (Coordinates, error) {
	return newCoordinates(lat, lng, true)
}

// RestoreCoordinates rebuilds a point from persistence, keeping its fixed flag.
func RestoreCoordinates(lat, lng float64, fixed bool) (Coordinates, error) {
	return newCoordinates(lat, lng, fixed)
}

func newCoordinates(lat, lng float64, fixed bool) (Coordinates, error) {
	c := Coordinates{
		fixed: fixed,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(c.setLat(lat), c.setLng(lng)); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}

// Validate reports ErrCoordinatesIsNotConstructed for zero values.
func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (c Coordinates) Lat() float64 {
	return c.lat
}

// Lng returns the longitude in degrees.
func (c Coordinates) Lng() float64 {
	return c.lng
}

// Fixed reports whether the point was corrected manually.
func (c Coordinates) Fixed() bool {
	return c.fixed
}

func (c Coordinates) String() string {
	return fmt.Sprintf("Coordinates(%.6f,%.6f)", c.lat, c.lng)
}

// DistanceMeters returns the great-circle distance to other using the haversine
// formula on a sphere of EarthRadiusMeters.
//
// Example:
//
//	origin, _ := kernel.NewCoordinates(0, 0)
//	east, _ := kernel.NewCoordinates(0, 1)
//	d, _ := origin.DistanceMeters(east) // ≈ 111195
func (c Coordinates) DistanceMeters(other Coordinates) (float64, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := degreesToRadians(c.lat)
	lat2 := degreesToRadians(other.lat)
	dLat := degreesToRadians(other.lat - c.lat)
	dLng := degreesToRadians(other.lng - c.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a)), nil
}

// setLat uses a pointer receiver so construction can validate in place;
// every exported method stays on the value receiver.
func (c *Coordinates) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	c.lat = lat
	return nil
}

func (c *Coordinates) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}
	c.lng = lng
	return nil
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
