package service

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

// Authorizer resolves what a principal may do inside an organization.
type Authorizer struct {
	members ports.MemberRepository
	roles   ports.RoleRepository
}

func NewAuthorizer(members ports.MemberRepository, roles ports.RoleRepository) *Authorizer {
	return &Authorizer{members: members, roles: roles}
}

// Access is a principal's effective standing in one organization.
// Member is nil for super-admins who are not members.
type Access struct {
	Member      *domain.Member
	Permissions domain.PermissionSet
}

// Permissions looks up the membership and its role. Non-members get
// ErrForbidden; super-admins get every permission.
func (a *Authorizer) Permissions(ctx context.Context, p *auth.Principal, orgID string) (*Access, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}

	member, err := a.members.Get(ctx, orgID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if p.IsSuperAdmin {
		return &Access{Member: member, Permissions: domain.FullPermissions()}, nil
	}
	if member == nil {
		return nil, fmt.Errorf("not a member of organization: %w", domain.ErrForbidden)
	}

	role, err := a.roles.GetByID(ctx, orgID, member.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	if role == nil {
		return &Access{Member: member}, nil
	}
	return &Access{Member: member, Permissions: role.Permissions}, nil
}

// Require fails with ErrForbidden unless the principal holds perm in orgID.
func (a *Authorizer) Require(ctx context.Context, p *auth.Principal, orgID string, perm domain.Permission) (*Access, error) {
	access, err := a.Permissions(ctx, p, orgID)
	if err != nil {
		return nil, err
	}
	if !access.Permissions.Has(perm) {
		return nil, fmt.Errorf("missing permission %s: %w", perm, domain.ErrForbidden)
	}
	return access, nil
}

// CanGrant fails with ErrForbidden when perms includes anything the caller
// does not hold. Handing out a role or shaping one never escalates.
func (a *Access) CanGrant(perms domain.PermissionSet) error {
	if !a.Permissions.Covers(perms) {
		return fmt.Errorf("cannot grant permissions beyond your own: %w", domain.ErrForbidden)
	}
	return nil
}
