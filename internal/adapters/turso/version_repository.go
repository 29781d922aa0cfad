package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

// TestVersionRepository reads and writes test_versions and variations.
type TestVersionRepository struct {
	db *sql.DB
}

func NewTestVersionRepository(db *sql.DB) *TestVersionRepository {
	return &TestVersionRepository{db: db}
}

func (r *TestVersionRepository) Create(ctx context.Context, v *domain.TestVersion) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version_number), 0) + 1 FROM test_versions WHERE test_id = ?`, v.TestID,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to compute next version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO test_versions (id, test_id, version_number, notes, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.TestID, next, v.Notes, v.CreatedBy, util.FormatTime(v.CreatedAt),
		); err != nil {
			return wrapWriteErr("create version", err)
		}

		for i := range v.Variations {
			variation := &v.Variations[i]
			variation.VersionID = v.ID
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO variations (id, version_id, position, name, description, is_control, traffic_weight)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				variation.ID, v.ID, i, variation.Name, variation.Description,
				util.BoolToInt64(variation.IsControl), variation.TrafficWeight,
			); err != nil {
				return wrapWriteErr("create variation", err)
			}
		}

		v.VersionNumber = next
		return nil
	})
}

const versionColumns = `id, test_id, version_number, notes, created_by, created_at`

func (r *TestVersionRepository) GetByNumber(ctx context.Context, testID string, number int) (*domain.TestVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM test_versions WHERE test_id = ? AND version_number = ?`, testID, number)
	return r.loadOne(ctx, row, "get version")
}

func (r *TestVersionRepository) GetLatest(ctx context.Context, testID string) (*domain.TestVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM test_versions WHERE test_id = ? ORDER BY version_number DESC LIMIT 1`, testID)
	return r.loadOne(ctx, row, "get latest version")
}

// ListByTest returns versions newest first. Variations are not loaded.
func (r *TestVersionRepository) ListByTest(ctx context.Context, testID string) ([]*domain.TestVersion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM test_versions WHERE test_id = ? ORDER BY version_number DESC`, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.TestVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *TestVersionRepository) loadOne(ctx context.Context, row *sql.Row, op string) (*domain.TestVersion, error) {
	v, err := scanVersion(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	variations, err := r.listVariations(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Variations = variations
	return v, nil
}

func (r *TestVersionRepository) listVariations(ctx context.Context, versionID string) ([]domain.Variation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version_id, name, description, is_control, traffic_weight
		FROM variations WHERE version_id = ? ORDER BY position`, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variations: %w", err)
	}
	defer rows.Close()

	var out []domain.Variation
	for rows.Next() {
		var v domain.Variation
		var isControl int64
		if err := rows.Scan(&v.ID, &v.VersionID, &v.Name, &v.Description, &isControl, &v.TrafficWeight); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		v.IsControl = isControl == 1
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVersion(s rowScanner) (*domain.TestVersion, error) {
	var v domain.TestVersion
	var createdAt string
	if err := s.Scan(&v.ID, &v.TestID, &v.VersionNumber, &v.Notes, &v.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	v.CreatedAt = util.ParseTime(createdAt)
	return &v, nil
}
