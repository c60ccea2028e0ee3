package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

func TestNewCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr string
	}{
		{name: "origin", lat: 0, lng: 0},
		{name: "tokyo station", lat: 35.6812, lng: 139.7671},
		{name: "bounds", lat: kernel.LatitudeMax, lng: kernel.LongitudeMin},
		{name: "latitude too large", lat: 90.0001, lng: 0, wantErr: "is lat"},
		{name: "latitude too small", lat: -91, lng: 0, wantErr: "is lat"},
		{name: "longitude too large", lat: 0, lng: 180.5, wantErr: "is lng"},
		{name: "NaN latitude", lat: math.NaN(), lng: 0, wantErr: "is lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := kernel.NewCoordinates(tt.lat, tt.lng)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, kernel.Coordinates{}, c)
				return
			}

			require.NoError(t, err)
			require.NoError(t, c.Validate())
			assert.InDelta(t, tt.lat, c.Lat(), 1e-12)
			assert.InDelta(t, tt.lng, c.Lng(), 1e-12)
			assert.False(t, c.Fixed())
		})
	}

	t.Run("both coordinates invalid reports both", func(t *testing.T) {
		_, err := kernel.NewCoordinates(100, 200)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "is lat")
		assert.Contains(t, err.Error(), "is lng")
	})
}

func TestNewFixedCoordinates(t *testing.T) {
	c, err := kernel.NewFixedCoordinates(35.0, 135.0)

	require.NoError(t, err)
	assert.True(t, c.Fixed())

	restored, err := kernel.RestoreCoordinates(c.Lat(), c.Lng(), c.Fixed())
	require.NoError(t, err)
	assert.Equal(t, c, restored)
}

func TestCoordinates_Validate(t *testing.T) {
	var zero kernel.Coordinates

	require.ErrorIs(t, zero.Validate(), kernel.ErrCoordinatesIsNotConstructed)
}

func TestCoordinates_DistanceMeters(t *testing.T) {
	origin, _ := kernel.NewCoordinates(0, 0)

	t.Run("same point is zero", func(t *testing.T) {
		d, err := origin.DistanceMeters(origin)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("one degree of longitude on the equator", func(t *testing.T) {
		east, _ := kernel.NewCoordinates(0, 1)

		d, err := origin.DistanceMeters(east)

		require.NoError(t, err)
		assert.InDelta(t, 111195, d, 1)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		tokyo, _ := kernel.NewCoordinates(35.6812, 139.7671)
		osaka, _ := kernel.NewCoordinates(34.7025, 135.4959)

		d1, err := tokyo.DistanceMeters(osaka)
		require.NoError(t, err)
		d2, err := osaka.DistanceMeters(tokyo)
		require.NoError(t, err)

		assert.InDelta(t, d1, d2, 1e-6)
		assert.InDelta(t, 403_000, d1, 3_000)
	})

	t.Run("zero value operand fails", func(t *testing.T) {
		var zero kernel.Coordinates

		_, err := origin.DistanceMeters(zero)

		require.ErrorIs(t, err, kernel.ErrCoordinatesIsNotConstructed)
	})
}
