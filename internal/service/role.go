package service

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

type RoleService struct {
	*common
	roles   ports.RoleRepository
	members ports.MemberRepository
}

type RoleInput struct {
	Name        string              `form:"name" validate:"required,max=50"`
	Description string              `form:"description" validate:"max=200"`
	Permissions []domain.Permission `form:"permissions"`
}

// List returns the organization's roles. Any member may list them.
func (s *RoleService) List(ctx context.Context, p *auth.Principal, orgID string) ([]*domain.Role, error) {
	if _, err := s.authz.Permissions(ctx, p, orgID); err != nil {
		return nil, err
	}
	return s.roles.ListByOrganization(ctx, orgID)
}

func (s *RoleService) Create(ctx context.Context, p *auth.Principal, orgID string, in RoleInput) (*domain.Role, error) {
	role, err := s.create(ctx, p, orgID, in)
	return role, s.record(ctx, "roles.create", err)
}

func (s *RoleService) create(ctx context.Context, p *auth.Principal, orgID string, in RoleInput) (*domain.Role, error) {
	access, err := s.authz.Require(ctx, p, orgID, domain.PermManageRoles)
	if err != nil {
		return nil, err
	}
	in = cleanRoleInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := access.CanGrant(domain.PermissionSetFrom(in.Permissions)); err != nil {
		return nil, err
	}

	existing, err := s.roles.GetByName(ctx, orgID, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("role %q already exists: %w", in.Name, domain.ErrConflict)
	}

	role := &domain.Role{
		ID:             s.newID(),
		OrganizationID: orgID,
		Name:           in.Name,
		Description:    in.Description,
		Permissions:    domain.PermissionSetFrom(in.Permissions),
		CreatedAt:      s.now(),
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update rewrites a custom role. System roles are read-only.
func (s *RoleService) Update(ctx context.Context, p *auth.Principal, orgID, roleID string, in RoleInput) (*domain.Role, error) {
	role, err := s.update(ctx, p, orgID, roleID, in)
	return role, s.record(ctx, "roles.update", err)
}

func (s *RoleService) update(ctx context.Context, p *auth.Principal, orgID, roleID string, in RoleInput) (*domain.Role, error) {
	access, err := s.authz.Require(ctx, p, orgID, domain.PermManageRoles)
	if err != nil {
		return nil, err
	}
	in = cleanRoleInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := access.CanGrant(domain.PermissionSetFrom(in.Permissions)); err != nil {
		return nil, err
	}

	role, err := s.get(ctx, orgID, roleID)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, fmt.Errorf("system role %q cannot be changed: %w", role.Name, domain.ErrConflict)
	}
	if err := access.CanGrant(role.Permissions); err != nil {
		return nil, err
	}

	role.Name = in.Name
	role.Description = in.Description
	role.Permissions = domain.PermissionSetFrom(in.Permissions)
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a custom role that no member holds.
func (s *RoleService) Delete(ctx context.Context, p *auth.Principal, orgID, roleID string) error {
	return s.record(ctx, "roles.delete", s.delete(ctx, p, orgID, roleID))
}

func (s *RoleService) delete(ctx context.Context, p *auth.Principal, orgID, roleID string) error {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermManageRoles); err != nil {
		return err
	}
	role, err := s.get(ctx, orgID, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("system role %q cannot be deleted: %w", role.Name, domain.ErrConflict)
	}

	n, err := s.members.CountByRole(ctx, orgID, roleID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("role %q is assigned to %d members: %w", role.Name, n, domain.ErrConflict)
	}
	return s.roles.Delete(ctx, orgID, roleID)
}

func (s *RoleService) get(ctx context.Context, orgID, roleID string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, orgID, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("role: %w", domain.ErrNotFound)
	}
	return role, nil
}

func cleanRoleInput(in RoleInput) RoleInput {
	in.Name = sanitize(in.Name)
	in.Description = sanitize(in.Description)
	return in
}
