package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

type MemberService struct {
	*common
	orgs        ports.OrganizationRepository
	roles       ports.RoleRepository
	members     ports.MemberRepository
	invitations ports.InvitationRepository
}

type InviteInput struct {
	Email  string `form:"email" validate:"required,email,max=254"`
	RoleID string `form:"role_id"`
}

// PendingInvitation is an invitation together with the organization it opens.
type PendingInvitation struct {
	Invitation   *domain.Invitation
	Organization *domain.Organization
}

func (s *MemberService) List(ctx context.Context, p *auth.Principal, orgID string) ([]*domain.Member, error) {
	if _, err := s.authz.Permissions(ctx, p, orgID); err != nil {
		return nil, err
	}
	return s.members.ListByOrganization(ctx, orgID)
}

// Invite records a pending invitation for email. Without a role the
// invitee joins as Viewer.
func (s *MemberService) Invite(ctx context.Context, p *auth.Principal, orgID string, in InviteInput) (*domain.Invitation, error) {
	inv, err := s.invite(ctx, p, orgID, in)
	return inv, s.record(ctx, "members.invite", err)
}

func (s *MemberService) invite(ctx context.Context, p *auth.Principal, orgID string, in InviteInput) (*domain.Invitation, error) {
	access, err := s.authz.Require(ctx, p, orgID, domain.PermManageMembers)
	if err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.RoleID = strings.TrimSpace(in.RoleID)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var role *domain.Role
	if in.RoleID == "" {
		role, err = s.roles.GetByName(ctx, orgID, domain.RoleViewer)
	} else {
		role, err = s.roles.GetByID(ctx, orgID, in.RoleID)
	}
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.NewValidationError("role_id", "unknown role")
	}
	if err := access.CanGrant(role.Permissions); err != nil {
		return nil, err
	}

	members, err := s.members.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if strings.EqualFold(m.Email, in.Email) {
			return nil, fmt.Errorf("%s is already a member: %w", in.Email, domain.ErrConflict)
		}
	}

	inv := &domain.Invitation{
		ID:             s.newID(),
		OrganizationID: orgID,
		Email:          in.Email,
		RoleID:         role.ID,
		RoleName:       role.Name,
		Token:          s.newID(),
		InvitedBy:      p.UserID,
		CreatedAt:      s.now(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *MemberService) ListInvitations(ctx context.Context, p *auth.Principal, orgID string) ([]*domain.Invitation, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermManageMembers); err != nil {
		return nil, err
	}
	return s.invitations.ListPending(ctx, orgID)
}

func (s *MemberService) RevokeInvitation(ctx context.Context, p *auth.Principal, orgID, id string) error {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermManageMembers); err != nil {
		return s.record(ctx, "members.revoke_invitation", err)
	}
	return s.record(ctx, "members.revoke_invitation", s.invitations.Delete(ctx, orgID, id))
}

// GetInvitation loads a pending invitation by its token.
func (s *MemberService) GetInvitation(ctx context.Context, token string) (*PendingInvitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.IsPending() {
		return nil, fmt.Errorf("invitation: %w", domain.ErrNotFound)
	}
	org, err := s.orgs.GetByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	return &PendingInvitation{Invitation: inv, Organization: org}, nil
}

// AcceptInvitation joins the principal to the inviting organization. The
// principal's email must match the invited address.
func (s *MemberService) AcceptInvitation(ctx context.Context, p *auth.Principal, token string) (*domain.Organization, error) {
	org, err := s.accept(ctx, p, token)
	return org, s.record(ctx, "members.accept_invitation", err)
}

func (s *MemberService) accept(ctx context.Context, p *auth.Principal, token string) (*domain.Organization, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	pending, err := s.GetInvitation(ctx, token)
	if err != nil {
		return nil, err
	}
	inv := pending.Invitation
	if !strings.EqualFold(inv.Email, p.Email) {
		return nil, fmt.Errorf("invitation was sent to a different address: %w", domain.ErrForbidden)
	}

	existing, err := s.members.Get(ctx, inv.OrganizationID, p.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("already a member: %w", domain.ErrConflict)
	}

	member := &domain.Member{
		OrganizationID: inv.OrganizationID,
		UserID:         p.UserID,
		Email:          p.Email,
		RoleID:         inv.RoleID,
		RoleName:       inv.RoleName,
		JoinedAt:       s.now(),
	}
	if err := s.invitations.Accept(ctx, inv.ID, member); err != nil {
		return nil, err
	}
	return pending.Organization, nil
}

// AssignRole changes a member's role. Granting or revoking Owner needs
// org.manage, the caller must hold every permission of both the old and the
// new role, and the last Owner cannot be demoted.
func (s *MemberService) AssignRole(ctx context.Context, p *auth.Principal, orgID, userID, roleID string) error {
	return s.record(ctx, "members.assign_role", s.assignRole(ctx, p, orgID, userID, roleID))
}

func (s *MemberService) assignRole(ctx context.Context, p *auth.Principal, orgID, userID, roleID string) error {
	access, err := s.authz.Require(ctx, p, orgID, domain.PermManageMembers)
	if err != nil {
		return err
	}

	member, err := s.getMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	role, err := s.roles.GetByID(ctx, orgID, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.NewValidationError("role_id", "unknown role")
	}
	if member.RoleID == role.ID {
		return nil
	}

	touchesOwner := role.Name == domain.RoleOwner || member.RoleName == domain.RoleOwner
	if touchesOwner && !access.Permissions.Has(domain.PermManageOrg) {
		return fmt.Errorf("changing ownership requires %s: %w", domain.PermManageOrg, domain.ErrForbidden)
	}
	if err := access.CanGrant(role.Permissions); err != nil {
		return err
	}
	current, err := s.roles.GetByID(ctx, orgID, member.RoleID)
	if err != nil {
		return err
	}
	if current != nil {
		if err := access.CanGrant(current.Permissions); err != nil {
			return err
		}
	}
	if member.RoleName == domain.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, orgID, member.RoleID); err != nil {
			return err
		}
	}
	return s.members.UpdateRole(ctx, orgID, userID, role.ID)
}

// Remove takes a member out of the organization.
func (s *MemberService) Remove(ctx context.Context, p *auth.Principal, orgID, userID string) error {
	return s.record(ctx, "members.remove", s.remove(ctx, p, orgID, userID))
}

func (s *MemberService) remove(ctx context.Context, p *auth.Principal, orgID, userID string) error {
	access, err := s.authz.Require(ctx, p, orgID, domain.PermManageMembers)
	if err != nil {
		return err
	}
	member, err := s.getMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member.RoleName == domain.RoleOwner {
		if !access.Permissions.Has(domain.PermManageOrg) {
			return fmt.Errorf("removing an owner requires %s: %w", domain.PermManageOrg, domain.ErrForbidden)
		}
		if err := s.ensureAnotherOwner(ctx, orgID, member.RoleID); err != nil {
			return err
		}
	}
	return s.members.Remove(ctx, orgID, userID)
}

func (s *MemberService) getMember(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	member, err := s.members.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
	}
	return member, nil
}

func (s *MemberService) ensureAnotherOwner(ctx context.Context, orgID, ownerRoleID string) error {
	n, err := s.members.CountByRole(ctx, orgID, ownerRoleID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("organization must keep at least one owner: %w", domain.ErrConflict)
	}
	return nil
}
