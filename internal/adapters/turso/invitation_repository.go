package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/util"
)

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationSelect = `
	SELECT i.id, i.organization_id, i.email, i.role_id, r.name, i.token, i.invited_by, i.created_at, i.accepted_at
	FROM invitations i
	JOIN roles r ON r.id = i.role_id`

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, organization_id, email, role_id, token, invited_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.OrganizationID, inv.Email, inv.RoleID, inv.Token, inv.InvitedBy, util.FormatTime(inv.CreatedAt),
	)
	return wrapWriteErr("create invitation", err)
}

func (r *InvitationRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, invitationSelect+` WHERE i.organization_id = ? AND i.id = ?`, orgID, id)
	inv, err := scanInvitation(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, invitationSelect+` WHERE i.token = ?`, token)
	inv, err := scanInvitation(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepository) ListPending(ctx context.Context, orgID string) ([]*domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		invitationSelect+` WHERE i.organization_id = ? AND i.accepted_at IS NULL ORDER BY i.created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *InvitationRepository) Accept(ctx context.Context, id string, member *domain.Member) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE invitations SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`,
			util.FormatTime(member.JoinedAt), id,
		)
		if err != nil {
			return wrapWriteErr("accept invitation", err)
		}
		if err := requireAffected(res, "accept invitation"); err != nil {
			return err
		}
		return addMember(ctx, tx, member)
	})
}

func (r *InvitationRepository) Delete(ctx context.Context, orgID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE organization_id = ? AND id = ?`, orgID, id)
	if err != nil {
		return wrapWriteErr("delete invitation", err)
	}
	return requireAffected(res, "delete invitation")
}

func scanInvitation(s rowScanner) (*domain.Invitation, error) {
	var inv domain.Invitation
	var createdAt string
	var acceptedAt sql.NullString
	if err := s.Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &inv.RoleID, &inv.RoleName,
		&inv.Token, &inv.InvitedBy, &createdAt, &acceptedAt,
	); err != nil {
		return nil, err
	}
	inv.CreatedAt = util.ParseTime(createdAt)
	inv.AcceptedAt = util.NullTimeToPtr(acceptedAt)
	return &inv, nil
}
