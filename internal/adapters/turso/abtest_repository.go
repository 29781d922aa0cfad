package turso

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

// ABTestRepository reads and writes ab_tests_summary.
type ABTestRepository struct {
	db *sql.DB
}

func NewABTestRepository(db *sql.DB) *ABTestRepository {
	return &ABTestRepository{db: db}
}

const abTestSelect = `
	SELECT t.id, t.organization_id, t.name, t.hypothesis, t.description, t.status, t.primary_metric,
		t.start_date, t.end_date, t.created_by, t.created_at, t.updated_at,
		(SELECT COALESCE(MAX(v.version_number), 0) FROM test_versions v WHERE v.test_id = t.id)
	FROM ab_tests_summary t`

func (r *ABTestRepository) Create(ctx context.Context, t *domain.ABTestSummary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ab_tests_summary (
			id, organization_id, name, hypothesis, description, status, primary_metric,
			start_date, end_date, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OrganizationID, t.Name, t.Hypothesis, t.Description, string(t.Status), t.PrimaryMetric,
		util.NullTime(t.StartDate), util.NullTime(t.EndDate), t.CreatedBy,
		util.FormatTime(t.CreatedAt), util.FormatTime(t.UpdatedAt),
	)
	return wrapWriteErr("create test", err)
}

func (r *ABTestRepository) GetByID(ctx context.Context, orgID, id string) (*domain.ABTestSummary, error) {
	row := r.db.QueryRowContext(ctx, abTestSelect+` WHERE t.organization_id = ? AND t.id = ?`, orgID, id)
	t, err := scanABTest(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return t, nil
}

func (r *ABTestRepository) GetByName(ctx context.Context, orgID, name string) (*domain.ABTestSummary, error) {
	row := r.db.QueryRowContext(ctx, abTestSelect+` WHERE t.organization_id = ? AND t.name = ?`, orgID, name)
	t, err := scanABTest(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test by name: %w", err)
	}
	return t, nil
}

func (r *ABTestRepository) ListByOrganization(ctx context.Context, orgID string, filter domain.TestFilter) ([]*domain.ABTestSummary, error) {
	var sb strings.Builder
	sb.WriteString(abTestSelect)
	sb.WriteString(` WHERE t.organization_id = ?`)
	args := []any{orgID}

	if filter.Status != nil {
		sb.WriteString(` AND t.status = ?`)
		args = append(args, string(*filter.Status))
	}
	sb.WriteString(` ORDER BY t.updated_at DESC, t.name`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	defer rows.Close()

	var tests []*domain.ABTestSummary
	for rows.Next() {
		t, err := scanABTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (r *ABTestRepository) Count(ctx context.Context, orgID string, status *domain.TestStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM ab_tests_summary WHERE organization_id = ?`
	args := []any{orgID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tests: %w", err)
	}
	return n, nil
}

func (r *ABTestRepository) CountByStatus(ctx context.Context, orgID string) (map[domain.TestStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM ab_tests_summary WHERE organization_id = ? GROUP BY status`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.TestStatus]int64, len(domain.AllStatuses))
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.TestStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *ABTestRepository) Update(ctx context.Context, t *domain.ABTestSummary) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ab_tests_summary SET
			name = ?, hypothesis = ?, description = ?, primary_metric = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?`,
		t.Name, t.Hypothesis, t.Description, t.PrimaryMetric,
		util.NullTime(t.StartDate), util.NullTime(t.EndDate), util.FormatTime(t.UpdatedAt),
		t.OrganizationID, t.ID,
	)
	if err != nil {
		return wrapWriteErr("update test", err)
	}
	return requireAffected(res, "update test")
}

func (r *ABTestRepository) UpdateStatus(ctx context.Context, orgID, id string, status domain.TestStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ab_tests_summary SET status = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE organization_id = ? AND id = ?`,
		string(status), orgID, id,
	)
	if err != nil {
		return wrapWriteErr("update test status", err)
	}
	return requireAffected(res, "update test status")
}

func (r *ABTestRepository) Delete(ctx context.Context, orgID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ab_tests_summary WHERE organization_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return wrapWriteErr("delete test", err)
	}
	return requireAffected(res, "delete test")
}

func scanABTest(s rowScanner) (*domain.ABTestSummary, error) {
	var t domain.ABTestSummary
	var status, createdAt, updatedAt string
	var startDate, endDate sql.NullString
	if err := s.Scan(
		&t.ID, &t.OrganizationID, &t.Name, &t.Hypothesis, &t.Description, &status, &t.PrimaryMetric,
		&startDate, &endDate, &t.CreatedBy, &createdAt, &updatedAt, &t.LatestVersion,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TestStatus(status)
	t.StartDate = util.NullTimeToPtr(startDate)
	t.EndDate = util.NullTimeToPtr(endDate)
	t.CreatedAt = util.ParseTime(createdAt)
	t.UpdatedAt = util.ParseTime(updatedAt)
	return &t, nil
}
