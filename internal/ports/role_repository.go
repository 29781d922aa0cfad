package ports

import (
	"context"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Role, error)
	GetByName(ctx context.Context, orgID, name string) (*domain.Role, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, orgID, id string) error
}
