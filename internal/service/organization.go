package service

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

type OrganizationService struct {
	*common
	orgs ports.OrganizationRepository
}

type OrganizationInput struct {
	Name string `form:"name" validate:"required,max=100"`
}

// Workspace is an organization as seen by one principal.
type Workspace struct {
	Org    *domain.Organization
	Access *Access
}

func (w *Workspace) Can(p domain.Permission) bool {
	return w != nil && w.Access != nil && w.Access.Permissions.Has(p)
}

// Create stores a new organization with the default roles and makes the
// principal its Owner.
func (s *OrganizationService) Create(ctx context.Context, p *auth.Principal, in OrganizationInput) (*domain.Organization, error) {
	org, err := s.create(ctx, p, in)
	return org, s.record(ctx, "orgs.create", err)
}

func (s *OrganizationService) create(ctx context.Context, p *auth.Principal, in OrganizationInput) (*domain.Organization, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	in.Name = sanitize(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	slug := domain.Slugify(in.Name)
	if slug == "" {
		return nil, domain.NewValidationError("name", "must contain letters or digits")
	}
	existing, err := s.orgs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		suffix := s.newID()
		if len(suffix) > 6 {
			suffix = suffix[:6]
		}
		slug = slug + "-" + suffix
	}

	now := s.now()
	org := &domain.Organization{
		ID:        s.newID(),
		Name:      in.Name,
		Slug:      slug,
		CreatedAt: now,
	}

	var roles []*domain.Role
	var ownerRoleID string
	for _, r := range domain.DefaultRoles() {
		role := r
		role.ID = s.newID()
		role.OrganizationID = org.ID
		role.CreatedAt = now
		if role.Name == domain.RoleOwner {
			ownerRoleID = role.ID
		}
		roles = append(roles, &role)
	}

	owner := &domain.Member{
		OrganizationID: org.ID,
		UserID:         p.UserID,
		Email:          p.Email,
		RoleID:         ownerRoleID,
		RoleName:       domain.RoleOwner,
		JoinedAt:       now,
	}
	if err := s.orgs.CreateWithOwner(ctx, org, roles, owner); err != nil {
		return nil, err
	}
	return org, nil
}

// Open resolves an organization by slug and the principal's access to it.
func (s *OrganizationService) Open(ctx context.Context, p *auth.Principal, slug string) (*Workspace, error) {
	org, err := s.orgs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization %q: %w", slug, domain.ErrNotFound)
	}
	access, err := s.authz.Permissions(ctx, p, org.ID)
	if err != nil {
		return nil, err
	}
	return &Workspace{Org: org, Access: access}, nil
}

// ListForUser returns the organizations the principal belongs to; super-admins see all.
func (s *OrganizationService) ListForUser(ctx context.Context, p *auth.Principal) ([]*domain.Organization, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if p.IsSuperAdmin {
		return s.orgs.List(ctx)
	}
	return s.orgs.ListForUser(ctx, p.UserID)
}

func (s *OrganizationService) Rename(ctx context.Context, p *auth.Principal, orgID string, in OrganizationInput) (*domain.Organization, error) {
	org, err := s.rename(ctx, p, orgID, in)
	return org, s.record(ctx, "orgs.rename", err)
}

func (s *OrganizationService) rename(ctx context.Context, p *auth.Principal, orgID string, in OrganizationInput) (*domain.Organization, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermManageOrg); err != nil {
		return nil, err
	}
	in.Name = sanitize(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	org.Name = in.Name
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) Delete(ctx context.Context, p *auth.Principal, orgID string) error {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermManageOrg); err != nil {
		return s.record(ctx, "orgs.delete", err)
	}
	return s.record(ctx, "orgs.delete", s.orgs.Delete(ctx, orgID))
}
