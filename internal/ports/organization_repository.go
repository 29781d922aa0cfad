package ports

import (
	"context"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	// CreateWithOwner stores the organization, its seed roles and the owning
	// member in one transaction.
	CreateWithOwner(ctx context.Context, org *domain.Organization, roles []*domain.Role, owner *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	List(ctx context.Context) ([]*domain.Organization, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Organization, error)
	Update(ctx context.Context, org *domain.Organization) error
	Delete(ctx context.Context, id string) error
}
