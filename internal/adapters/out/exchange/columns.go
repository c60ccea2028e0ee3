// Package exchange reads and writes manifest export files: quoted CSV for
// round trips and XLSX for office tools.
package exchange

import (
	"strconv"
	"time"

	"manifest/internal/core/domain/model/item"
)

// Columns is the fixed export header.
var Columns = []string{
	"id", "code", "kind", "name", "address", "phone", "status", "deliveryMethod",
	"redeliveryAt", "memo", "lat", "lng", "createdAt", "updatedAt",
}

// row renders it in Columns order. Absent coordinates are empty strings.
func row(it *item.Item) []string {
	lat, lng := "", ""
	if c := it.Coordinates(); c != nil {
		lat = strconv.FormatFloat(c.Lat(), 'f', -1, 64)
		lng = strconv.FormatFloat(c.Lng(), 'f', -1, 64)
	}
	return []string{
		it.ID().String(),
		it.Code(),
		it.Kind().String(),
		it.Name(),
		it.Address(),
		it.Phone(),
		it.Status().String(),
		it.DeliveryMethod(),
		it.RedeliveryAt(),
		it.Memo(),
		lat,
		lng,
		it.CreatedAt().UTC().Format(time.RFC3339Nano),
		it.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
}
