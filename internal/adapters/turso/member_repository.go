package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/database"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

// MemberRepository reads and writes organization_users.
type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberSelect = `
	SELECT ou.organization_id, ou.user_id, ou.email, ou.role_id, r.name, ou.joined_at
	FROM organization_users ou
	JOIN roles r ON r.id = ou.role_id`

func (r *MemberRepository) Add(ctx context.Context, m *domain.Member) error {
	return addMember(ctx, r.db, m)
}

func addMember(ctx context.Context, db execer, m *domain.Member) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO organization_users (organization_id, user_id, email, role_id, joined_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.OrganizationID, m.UserID, m.Email, m.RoleID, util.FormatTime(m.JoinedAt),
	)
	return wrapWriteErr("add member", err)
}

func (r *MemberRepository) Get(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	m, err := database.WithRetry(ctx, readRetries, func() (*domain.Member, error) {
		row := r.db.QueryRowContext(ctx, memberSelect+` WHERE ou.organization_id = ? AND ou.user_id = ?`, orgID, userID)
		return scanMember(row)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (r *MemberRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, memberSelect+` WHERE ou.organization_id = ? ORDER BY ou.email`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepository) UpdateRole(ctx context.Context, orgID, userID, roleID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organization_users SET role_id = ? WHERE organization_id = ? AND user_id = ?`,
		roleID, orgID, userID,
	)
	if err != nil {
		return wrapWriteErr("update member role", err)
	}
	return requireAffected(res, "update member role")
}

func (r *MemberRepository) Remove(ctx context.Context, orgID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM organization_users WHERE organization_id = ? AND user_id = ?`, orgID, userID)
	if err != nil {
		return wrapWriteErr("remove member", err)
	}
	return requireAffected(res, "remove member")
}

func (r *MemberRepository) CountByRole(ctx context.Context, orgID, roleID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM organization_users WHERE organization_id = ? AND role_id = ?`, orgID, roleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count members by role: %w", err)
	}
	return n, nil
}

func scanMember(s rowScanner) (*domain.Member, error) {
	var m domain.Member
	var joinedAt string
	if err := s.Scan(&m.OrganizationID, &m.UserID, &m.Email, &m.RoleID, &m.RoleName, &joinedAt); err != nil {
		return nil, err
	}
	m.JoinedAt = util.ParseTime(joinedAt)
	return &m, nil
}
