package ports

import (
	"context"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// MemberRepository wraps the organization_users table.
type MemberRepository interface {
	Add(ctx context.Context, member *domain.Member) error
	Get(ctx context.Context, orgID, userID string) (*domain.Member, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*domain.Member, error)
	UpdateRole(ctx context.Context, orgID, userID, roleID string) error
	Remove(ctx context.Context, orgID, userID string) error
	CountByRole(ctx context.Context, orgID, roleID string) (int64, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Invitation, error)
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	ListPending(ctx context.Context, orgID string) ([]*domain.Invitation, error)
	// Accept marks the invitation accepted and adds the member atomically.
	Accept(ctx context.Context, id string, member *domain.Member) error
	Delete(ctx context.Context, orgID, id string) error
}
