package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/database"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

const roleColumns = `id, organization_id, name, description,
	can_view_tests, can_edit_tests, can_delete_tests, can_run_analysis,
	can_manage_members, can_manage_roles, can_manage_org, is_system, created_at`

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	return createRole(ctx, r.db, role)
}

func createRole(ctx context.Context, db execer, role *domain.Role) error {
	p := role.Permissions
	_, err := db.ExecContext(ctx, `
		INSERT INTO roles (`+roleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.OrganizationID, role.Name, role.Description,
		util.BoolToInt64(p.ViewTests), util.BoolToInt64(p.EditTests), util.BoolToInt64(p.DeleteTests),
		util.BoolToInt64(p.RunAnalysis), util.BoolToInt64(p.ManageMembers), util.BoolToInt64(p.ManageRoles),
		util.BoolToInt64(p.ManageOrg), util.BoolToInt64(role.IsSystem), util.FormatTime(role.CreatedAt),
	)
	return wrapWriteErr("create role", err)
}

func (r *RoleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Role, error) {
	role, err := database.WithRetry(ctx, readRetries, func() (*domain.Role, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+roleColumns+` FROM roles WHERE organization_id = ? AND id = ?`, orgID, id)
		return scanRole(row)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE organization_id = ? AND name = ?`, orgID, name)
	role, err := scanRole(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE organization_id = ? ORDER BY is_system DESC, created_at, name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	p := role.Permissions
	res, err := r.db.ExecContext(ctx, `
		UPDATE roles SET
			name = ?, description = ?,
			can_view_tests = ?, can_edit_tests = ?, can_delete_tests = ?, can_run_analysis = ?,
			can_manage_members = ?, can_manage_roles = ?, can_manage_org = ?
		WHERE organization_id = ? AND id = ?`,
		role.Name, role.Description,
		util.BoolToInt64(p.ViewTests), util.BoolToInt64(p.EditTests), util.BoolToInt64(p.DeleteTests),
		util.BoolToInt64(p.RunAnalysis), util.BoolToInt64(p.ManageMembers), util.BoolToInt64(p.ManageRoles),
		util.BoolToInt64(p.ManageOrg),
		role.OrganizationID, role.ID,
	)
	if err != nil {
		return wrapWriteErr("update role", err)
	}
	return requireAffected(res, "update role")
}

func (r *RoleRepository) Delete(ctx context.Context, orgID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE organization_id = ? AND id = ?`, orgID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("failed to delete role: role is still assigned: %w", domain.ErrConflict)
		}
		return wrapWriteErr("delete role", err)
	}
	return requireAffected(res, "delete role")
}

func scanRole(s rowScanner) (*domain.Role, error) {
	var role domain.Role
	var view, edit, del, analysis, members, roles, org, system int64
	var createdAt string
	if err := s.Scan(
		&role.ID, &role.OrganizationID, &role.Name, &role.Description,
		&view, &edit, &del, &analysis, &members, &roles, &org, &system, &createdAt,
	); err != nil {
		return nil, err
	}
	role.Permissions = domain.PermissionSet{
		ViewTests:     view == 1,
		EditTests:     edit == 1,
		DeleteTests:   del == 1,
		RunAnalysis:   analysis == 1,
		ManageMembers: members == 1,
		ManageRoles:   roles == 1,
		ManageOrg:     org == 1,
	}
	role.IsSystem = system == 1
	role.CreatedAt = util.ParseTime(createdAt)
	return &role, nil
}
