package item_test

import (
	"fmt"
	"testing"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should keep persisted enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(item.Unknown))
		assert.Equal(t, 1, int(item.Pending))
		assert.Equal(t, 2, int(item.Absent))
		assert.Equal(t, 3, int(item.Delivered))
		assert.Equal(t, 7, int(item.HandedOver))
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range item.Statuses() {
		t.Run(fmt.Sprintf("should validate %s status", status), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	t.Run("should reject Unknown and out of range values", func(t *testing.T) {
		for _, s := range []item.Status{item.Unknown, item.Status(99), item.Status(-1)} {
			err := s.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestParseStatus(t *testing.T) {
	t.Run("should round trip every status name", func(t *testing.T) {
		for _, s := range item.Statuses() {
			parsed, err := item.ParseStatus(s.String())

			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should ignore case and surrounding spaces", func(t *testing.T) {
		parsed, err := item.ParseStatus("  Absent ")

		require.NoError(t, err)
		assert.Equal(t, item.Absent, parsed)
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		_, err := item.ParseStatus("lost")

		require.Error(t, err)
		assert.Contains(t, err.Error(), `"lost" is not a valid status`)
	})
}

func TestStatus_IsActive(t *testing.T) {
	assert.True(t, item.Pending.IsActive())
	assert.True(t, item.Absent.IsActive())
	assert.True(t, item.Held.IsActive())
	assert.False(t, item.Delivered.IsActive())
	assert.False(t, item.Unknown.IsActive())
}

func TestStatus_Absent(t *testing.T) {
	t.Run("should allow Pending and Absent", func(t *testing.T) {
		for _, s := range []item.Status{item.Pending, item.Absent} {
			next, err := s.Absent()

			require.NoError(t, err)
			assert.Equal(t, item.Absent, next)
		}
	})

	t.Run("should reject every other status", func(t *testing.T) {
		for _, s := range []item.Status{item.Delivered, item.PickedUp, item.Returned, item.Unknown} {
			_, err := s.Absent()

			require.Error(t, err, s.String())
			assert.Contains(t, err.Error(), "is not a valid status to mark absent")
		}
	})
}

func TestStatus_ToPeer(t *testing.T) {
	t.Run("should move active statuses to a peer", func(t *testing.T) {
		next, err := item.Absent.ToPeer(item.Returned)

		require.NoError(t, err)
		assert.Equal(t, item.Returned, next)

		next, err = item.Held.ToPeer(item.HandedOver)

		require.NoError(t, err)
		assert.Equal(t, item.HandedOver, next)
	})

	t.Run("should never target Delivered", func(t *testing.T) {
		_, err := item.Pending.ToPeer(item.Delivered)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reachable only through scan confirmation")
	})

	t.Run("should reject non peer targets", func(t *testing.T) {
		_, err := item.Pending.ToPeer(item.Absent)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not a peer status")
	})

	t.Run("should not leave Delivered", func(t *testing.T) {
		_, err := item.Delivered.ToPeer(item.Held)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "delivered is not a valid status to leave")
	})
}

func TestParseKind(t *testing.T) {
	t.Run("should default empty to parcel", func(t *testing.T) {
		k, err := item.ParseKind("")

		require.NoError(t, err)
		assert.Equal(t, item.KindParcel, k)
	})

	t.Run("should parse declared names", func(t *testing.T) {
		for _, k := range item.Kinds() {
			parsed, err := item.ParseKind(k.String())

			require.NoError(t, err)
			assert.Equal(t, k, parsed)
		}
	})

	t.Run("should reject unknown", func(t *testing.T) {
		_, err := item.ParseKind("crate")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestParseDisposition(t *testing.T) {
	d, err := item.ParseDisposition("Deposited_In_Box")
	require.NoError(t, err)
	assert.Equal(t, item.DispositionDepositedInBox, d)

	d, err = item.ParseDisposition("")
	require.NoError(t, err)
	assert.Equal(t, item.DispositionNone, d)

	_, err = item.ParseDisposition("thrown_over_fence")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestParseStatusFilter(t *testing.T) {
	all, err := item.ParseStatusFilter("all")
	require.NoError(t, err)
	assert.Equal(t, "all", all.String())

	absent, err := item.ParseStatusFilter("absent")
	require.NoError(t, err)
	assert.Equal(t, "absent", absent.String())

	_, err = item.ParseStatusFilter("everything")
	require.Error(t, err)
}
