package exchange

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

// WriteCSV writes the header and one line per item. Every field is quoted and
// embedded quotes are doubled.
func WriteCSV(w io.Writer, items []*item.Item) error {
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, Columns); err != nil {
		return err
	}
	for _, it := range items {
		if err := writeLine(bw, row(it)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// RowError reports a line that could not be imported. Line counts the header as 1.
type RowError struct {
	Line  int
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

// ReadCSV parses a file written by WriteCSV. Malformed rows, including broken
// quoting, are reported in rowErrs and skipped; err is set only when the header
// is unusable or the reader fails. Imported items
// take their line position as custom order and start with an empty history.
func ReadCSV(r io.Reader) (items []*item.Item, rowErrs []error, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errs.NewValueIsRequiredError("header")
	}
	if err != nil {
		return nil, nil, errs.NewValueIsInvalidErrorWithCause("csv", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, nil, err
	}

	order := 0
	for {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		order++
		var parseErr *csv.ParseError
		if errors.As(readErr, &parseErr) {
			rowErrs = append(rowErrs, &RowError{Line: parseErr.StartLine,
				Cause: errs.NewValueIsInvalidErrorWithCause("csv", parseErr.Err)})
			continue
		}
		if readErr != nil {
			return nil, nil, errs.NewValueIsInvalidErrorWithCause("csv", readErr)
		}
		line, _ := cr.FieldPos(0)
		if len(record) != len(Columns) {
			rowErrs = append(rowErrs, &RowError{Line: line,
				Cause: fmt.Errorf("expected %d fields, got %d", len(Columns), len(record))})
			continue
		}

		it, rowErr := parseRow(record, index, order)
		if rowErr != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Cause: rowErr})
			continue
		}
		items = append(items, it)
	}

	return items, rowErrs, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	var missing []error
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			missing = append(missing, errs.NewValueIsRequiredError("column "+c))
		}
	}
	return index, errors.Join(missing...)
}

func parseRow(record []string, index map[string]int, order int) (*item.Item, error) {
	get := func(col string) string { return record[index[col]] }

	id, err := kernel.UUIDFromString(get("id"))
	if err != nil {
		return nil, err
	}
	kind, err := item.ParseKind(get("kind"))
	if err != nil {
		return nil, err
	}
	status, err := item.ParseStatus(get("status"))
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime("createdAt", get("createdAt"))
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime("updatedAt", get("updatedAt"))
	if err != nil {
		return nil, err
	}
	coords, err := parseCoordinates(get("lat"), get("lng"))
	if err != nil {
		return nil, err
	}

	return item.RestoreItem(item.RestoreParams{
		ID:             id,
		Code:           get("code"),
		Kind:           kind,
		Name:           get("name"),
		Address:        get("address"),
		Phone:          get("phone"),
		Status:         status,
		DeliveryMethod: get("deliveryMethod"),
		Memo:           get("memo"),
		RedeliveryAt:   get("redeliveryAt"),
		Coordinates:    coords,
		Order:          order,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	})
}

func parseTime(name, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return t, nil
}

// parseCoordinates requires both values or neither.
func parseCoordinates(lat, lng string) (*kernel.Coordinates, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("coordinates", errors.New("lat and lng must be given together"))
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lat", err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lng", err)
	}
	c, err := kernel.NewCoordinates(la, ln)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
