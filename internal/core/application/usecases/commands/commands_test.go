package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

func TestNewAddItemCommand(t *testing.T) {
	t.Run("should accept a scanned code", func(t *testing.T) {
		cmd, err := commands.NewAddItemCommand(item.Candidate{Source: item.SourceScan, Code: "1234-5678-9012"})

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, "1234-5678-9012", cmd.Candidate().Code)
	})

	t.Run("should reject a scan without code", func(t *testing.T) {
		_, err := commands.NewAddItemCommand(item.Candidate{Source: item.SourceScan, Name: "Sato"})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.AddItemCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrAddItemCommandIsNotConstructed)
	})
}

func TestNewUpdateItemCommand(t *testing.T) {
	name := "Suzuki"

	t.Run("should keep id and patch", func(t *testing.T) {
		id := kernel.NewUUID()

		cmd, err := commands.NewUpdateItemCommand(id, item.Patch{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, id, cmd.ItemID())
		assert.Equal(t, &name, cmd.Patch().Name)
	})

	t.Run("should reject an empty patch and a zero id together", func(t *testing.T) {
		_, err := commands.NewUpdateItemCommand(kernel.UUID{}, item.Patch{})

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewMarkAbsentCommand(t *testing.T) {
	cmd, err := commands.NewMarkAbsentCommand(kernel.NewUUID(), " 18:00-20:00 ", " knock twice ")

	require.NoError(t, err)
	assert.Equal(t, "18:00-20:00", cmd.RedeliveryAt())
	assert.Equal(t, "knock twice", cmd.Note())

	_, err = commands.NewMarkAbsentCommand(kernel.UUID{}, "", "")
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewSetPeerStatusCommand(t *testing.T) {
	t.Run("should accept peer statuses", func(t *testing.T) {
		for _, s := range []item.Status{item.PickedUp, item.Held, item.Returned, item.HandedOver} {
			cmd, err := commands.NewSetPeerStatusCommand(kernel.NewUUID(), s, "")

			require.NoError(t, err, s.String())
			assert.Equal(t, s, cmd.Status())
		}
	})

	t.Run("should reject delivered and the base statuses", func(t *testing.T) {
		for _, s := range []item.Status{item.Delivered, item.Pending, item.Absent, item.Unknown} {
			_, err := commands.NewSetPeerStatusCommand(kernel.NewUUID(), s, "")

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, s.String())
		}
	})
}

func TestNewReorderItemsCommand(t *testing.T) {
	t.Run("should copy the ids", func(t *testing.T) {
		ids := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

		cmd, err := commands.NewReorderItemsCommand(ids)
		require.NoError(t, err)
		ids[0] = kernel.NewUUID()

		assert.NotEqual(t, ids[0], cmd.ItemIDs()[0])
	})

	t.Run("should require at least one id", func(t *testing.T) {
		_, err := commands.NewReorderItemsCommand(nil)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject zero ids", func(t *testing.T) {
		_, err := commands.NewReorderItemsCommand([]kernel.UUID{kernel.NewUUID(), {}})

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestNewGeocodeItemsCommand(t *testing.T) {
	cmd, err := commands.NewGeocodeItemsCommand(time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cmd.Delay())

	_, err = commands.NewGeocodeItemsCommand(-time.Second)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestNewImportItemsCommand(t *testing.T) {
	_, err := commands.NewImportItemsCommand(nil)

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
