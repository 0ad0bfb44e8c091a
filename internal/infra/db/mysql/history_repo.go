package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/brandlens/brandlens/internal/domain/reports"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts one audit row per analysis run
func (r *HistoryRepository) Save(ctx context.Context, e *domain.HistoryEntry) error {
	const q = `
INSERT INTO analysis_history
  (request_id, brand_name, model, input_tokens, output_tokens, total_tokens, duration_ms, report_path, status, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), report_path=VALUES(report_path);
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.RequestID, e.BrandName, e.Model,
		e.InputTokens, e.OutputTokens, e.TotalTokens,
		e.DurationMS, e.ReportPath, e.Status, createdAt)
	return err
}

// Paginate returns a page of audit rows ordered by created_at desc
func (r *HistoryRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.HistoryEntry, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT request_id, brand_name, model, input_tokens, output_tokens, total_tokens, duration_ms, report_path, status, created_at
FROM analysis_history
ORDER BY created_at DESC, request_id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.RequestID, &e.BrandName, &e.Model,
			&e.InputTokens, &e.OutputTokens, &e.TotalTokens,
			&e.DurationMS, &e.ReportPath, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
