package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetDaySummaryQueryHandler aggregates sync records directly in SQL.
type GetDaySummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetDaySummaryQueryHandler creates a handler over the sync backend connection.
func NewGetDaySummaryQueryHandler(db *gorm.DB) GetDaySummaryQueryHandler {
	return GetDaySummaryQueryHandler{db: db}
}

// Handle counts the records created on the query's day, grouped by status.
func (h GetDaySummaryQueryHandler) Handle(
	ctx context.Context,
	query GetDaySummaryQuery,
) (GetDaySummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDaySummaryQueryResponse{}, err
	}

	resp := GetDaySummaryQueryResponse{
		Day:      query.Day(),
		ByStatus: make(map[string]int),
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*)
		FROM sync_records
		WHERE created_at >= ? AND created_at < ?
		GROUP BY status
		ORDER BY status`,
		query.Day(), query.Day().AddDate(0, 0, 1),
	).Rows()
	if err != nil {
		return GetDaySummaryQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return GetDaySummaryQueryResponse{}, err
		}
		resp.ByStatus[status] = count
		resp.Total += count
	}

	if err := rows.Err(); err != nil {
		return GetDaySummaryQueryResponse{}, err
	}

	return resp, nil
}
