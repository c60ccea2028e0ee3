package services_test

import (
	"testing"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestDedupGuard_IsDuplicateActive(t *testing.T) {
	guard := services.NewDedupGuard()

	t.Run("should flag a code held by an active item", func(t *testing.T) {
		for _, st := range []item.Status{item.Pending, item.Absent, item.Held, item.Returned} {
			items := []*item.Item{restoreItem(t, itemFixture{code: "A1", status: st})}

			assert.True(t, guard.IsDuplicateActive(items, "A1"), st.String())
		}
	})

	t.Run("should let a code through when only delivered items hold it", func(t *testing.T) {
		items := []*item.Item{
			restoreItem(t, itemFixture{code: "A1", status: item.Delivered}),
			restoreItem(t, itemFixture{code: "B2"}),
		}

		assert.False(t, guard.IsDuplicateActive(items, "A1"))
	})

	t.Run("should compare codes verbatim", func(t *testing.T) {
		items := []*item.Item{restoreItem(t, itemFixture{code: "A1"})}

		assert.False(t, guard.IsDuplicateActive(items, "a1"))
		assert.False(t, guard.IsDuplicateActive(items, ""))
	})
}

func TestDedupGuard_FindActive(t *testing.T) {
	guard := services.NewDedupGuard()
	self := restoreItem(t, itemFixture{code: "A1"})
	other := restoreItem(t, itemFixture{code: "B2"})
	items := []*item.Item{self, other}

	t.Run("should skip the excluded item", func(t *testing.T) {
		id := self.ID()

		assert.Nil(t, guard.FindActive(items, "A1", &id))
	})

	t.Run("should return the colliding item", func(t *testing.T) {
		id := self.ID()

		found := guard.FindActive(items, "B2", &id)

		assert.True(t, found.IsEqual(other))
	})
}
