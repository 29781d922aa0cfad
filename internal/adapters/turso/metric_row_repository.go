package turso

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

const metricDateLayout = "2006-01-02"

type MetricRowRepository struct {
	db *sql.DB
}

func NewMetricRowRepository(db *sql.DB) *MetricRowRepository {
	return &MetricRowRepository{db: db}
}

func (r *MetricRowRepository) InsertBatch(ctx context.Context, rows []domain.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return insertMetricRows(ctx, tx, rows)
	})
}

// ReplaceByTest swaps a test's rows for rows in one transaction, so a failed
// insert leaves the previous upload in place.
func (r *MetricRowRepository) ReplaceByTest(ctx context.Context, testID string, rows []domain.MetricRow) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM metric_rows WHERE test_id = ?`, testID); err != nil {
			return fmt.Errorf("failed to delete metric rows: %w", err)
		}
		return insertMetricRows(ctx, tx, rows)
	})
}

func insertMetricRows(ctx context.Context, tx *sql.Tx, rows []domain.MetricRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metric_rows (test_id, variation, date, visitors, conversions, revenue, segment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare metric insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.TestID, row.Variation, row.Date.Format(metricDateLayout),
			row.Visitors, row.Conversions, row.Revenue, row.Segment,
		); err != nil {
			return wrapWriteErr("insert metric row", err)
		}
	}
	return nil
}

func (r *MetricRowRepository) ListByTest(ctx context.Context, testID string, filters domain.AnalysisFilters) ([]domain.MetricRow, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, test_id, variation, date, visitors, conversions, revenue, segment
		FROM metric_rows WHERE test_id = ?`)
	args := []any{testID}

	if filters.StartDate != nil {
		sb.WriteString(` AND date >= ?`)
		args = append(args, filters.StartDate.Format(metricDateLayout))
	}
	if filters.EndDate != nil {
		sb.WriteString(` AND date <= ?`)
		args = append(args, filters.EndDate.Format(metricDateLayout))
	}
	if filters.Segment != "" {
		sb.WriteString(` AND segment = ?`)
		args = append(args, filters.Segment)
	}
	sb.WriteString(` ORDER BY date, variation`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list metric rows: %w", err)
	}
	defer rows.Close()

	var out []domain.MetricRow
	for rows.Next() {
		var m domain.MetricRow
		var date string
		if err := rows.Scan(&m.ID, &m.TestID, &m.Variation, &date, &m.Visitors, &m.Conversions, &m.Revenue, &m.Segment); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		m.Date, err = parseMetricDate(date)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MetricRowRepository) CountByTest(ctx context.Context, testID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metric_rows WHERE test_id = ?`, testID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count metric rows: %w", err)
	}
	return n, nil
}

func (r *MetricRowRepository) DeleteByTest(ctx context.Context, testID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metric_rows WHERE test_id = ?`, testID); err != nil {
		return fmt.Errorf("failed to delete metric rows: %w", err)
	}
	return nil
}

func parseMetricDate(s string) (time.Time, error) {
	t, err := time.Parse(metricDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse metric date %q: %w", s, err)
	}
	return t, nil
}
