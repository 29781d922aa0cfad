package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, slug, created_at`

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		org.ID, org.Name, org.Slug, util.FormatTime(org.CreatedAt),
	)
	return wrapWriteErr("create organization", err)
}

func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, org *domain.Organization, roles []*domain.Role, owner *domain.Member) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO organizations (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
			org.ID, org.Name, org.Slug, util.FormatTime(org.CreatedAt),
		); err != nil {
			return wrapWriteErr("create organization", err)
		}
		for _, role := range roles {
			if err := createRole(ctx, tx, role); err != nil {
				return err
			}
		}
		if owner != nil {
			return addMember(ctx, tx, owner)
		}
		return nil
	})
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id)
	org, err := scanOrganization(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE slug = ?`, slug)
	org, err := scanOrganization(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return collectOrganizations(rows)
}

func (r *OrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.slug, o.created_at
		FROM organizations o
		JOIN organization_users ou ON ou.organization_id = o.id
		WHERE ou.user_id = ?
		ORDER BY o.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations for user: %w", err)
	}
	return collectOrganizations(rows)
}

func (r *OrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET name = ?, slug = ? WHERE id = ?`,
		org.Name, org.Slug, org.ID,
	)
	if err != nil {
		return wrapWriteErr("update organization", err)
	}
	return requireAffected(res, "update organization")
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return wrapWriteErr("delete organization", err)
	}
	return requireAffected(res, "delete organization")
}

func scanOrganization(s rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	var createdAt string
	if err := s.Scan(&org.ID, &org.Name, &org.Slug, &createdAt); err != nil {
		return nil, err
	}
	org.CreatedAt = util.ParseTime(createdAt)
	return &org, nil
}

func collectOrganizations(rows *sql.Rows) ([]*domain.Organization, error) {
	defer rows.Close()
	var out []*domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}
