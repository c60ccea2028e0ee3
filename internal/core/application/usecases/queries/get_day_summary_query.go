package queries

import (
	"errors"
	"time"

	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var (
	ErrGetDaySummaryQueryIsNotConstructed = errors.New(
		"GetDaySummaryQuery must be created via NewGetDaySummaryQuery constructor",
	)
)

// GetDaySummaryQuery reports per-status totals of the records synchronized for one day.
type GetDaySummaryQuery struct {
	day time.Time

	guard guard.ConstructorGuard
}

// NewGetDaySummaryQuery requires a day; only its date in its location matters.
func NewGetDaySummaryQuery(day time.Time) (GetDaySummaryQuery, error) {
	if day.IsZero() {
		return GetDaySummaryQuery{}, errs.NewValueIsRequiredError("day")
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return GetDaySummaryQuery{day: start, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDaySummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetDaySummaryQueryIsNotConstructed)
}

// Day returns midnight of the requested day.
func (q GetDaySummaryQuery) Day() time.Time { return q.day }

// GetDaySummaryQueryResponse holds the day's totals keyed by status name.
type GetDaySummaryQueryResponse struct {
	Day      time.Time
	Total    int
	ByStatus map[string]int
}
