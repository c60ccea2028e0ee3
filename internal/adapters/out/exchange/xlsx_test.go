package exchange_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"manifest/internal/adapters/out/exchange"
)

func TestWriteXLSX(t *testing.T) {
	items := sampleItems(t)
	var buf bytes.Buffer

	require.NoError(t, exchange.WriteXLSX(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exchange.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exchange.Columns, rows[0])
	assert.Equal(t, items[0].Code(), rows[1][1])
	assert.Equal(t, `Sato "Hanako"`, rows[1][3])
	assert.Equal(t, "absent", rows[1][6])

	lat, err := f.GetCellValue(exchange.SheetName, "K2")
	require.NoError(t, err)
	assert.Equal(t, "35.6812", lat)
}
