package services_test

import (
	"testing"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

type itemFixture struct {
	code         string
	status       item.Status
	order        int
	redeliveryAt string
	createdAt    time.Time
	coords       *kernel.Coordinates
}

func restoreItem(t *testing.T, s itemFixture) *item.Item {
	t.Helper()

	if s.status == item.Unknown {
		s.status = item.Pending
	}
	if s.code == "" {
		s.code = "C-" + kernel.NewUUID().ShortHex()
	}
	if s.createdAt.IsZero() {
		s.createdAt = baseTime
	}

	it, err := item.RestoreItem(item.RestoreParams{
		ID:           kernel.NewUUID(),
		Code:         s.code,
		Kind:         item.KindParcel,
		Name:         "Sato",
		Address:      "Tokyo",
		Status:       s.status,
		RedeliveryAt: s.redeliveryAt,
		Coordinates:  s.coords,
		Order:        s.order,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.createdAt,
	})
	require.NoError(t, err)
	return it
}

func coords(t *testing.T, lat, lng float64) *kernel.Coordinates {
	t.Helper()

	c, err := kernel.NewCoordinates(lat, lng)
	require.NoError(t, err)
	return &c
}

func codes(items []*item.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code())
	}
	return out
}
