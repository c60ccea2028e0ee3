package guard_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest/internal/pkg/guard"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("command not constructed")

	tests := []struct {
		name  string
		guard guard.ConstructorGuard
		given error
		want  error
	}{
		{name: "constructed with custom error", guard: guard.NewConstructorGuard(), given: errNotConstructed},
		{name: "constructed without error", guard: guard.NewConstructorGuard()},
		{name: "zero value returns the given error", given: errNotConstructed, want: errNotConstructed},
		{name: "zero value falls back to the default", want: guard.ErrDefaultConstructorGuard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guard.Validate(tt.given)

			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestConstructorGuard_EmbeddedInValue(t *testing.T) {
	type redeliveryWindow struct {
		slot  string
		guard guard.ConstructorGuard
	}
	errWindowNotConstructed := errors.New("redeliveryWindow must be created via newRedeliveryWindow")

	newRedeliveryWindow := func(slot string) (redeliveryWindow, error) {
		if slot == "" {
			return redeliveryWindow{}, errors.New("slot is required")
		}
		return redeliveryWindow{slot: slot, guard: guard.NewConstructorGuard()}, nil
	}

	w, err := newRedeliveryWindow("18:00-20:00")
	require.NoError(t, err)
	require.NoError(t, w.guard.Validate(errWindowNotConstructed))

	var zero redeliveryWindow
	assert.Equal(t, errWindowNotConstructed, zero.guard.Validate(errWindowNotConstructed))
}
