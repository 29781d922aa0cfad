package domain

import "time"

// Member mirrors a row of organization_users joined with its role name.
type Member struct {
	OrganizationID string
	UserID         string
	Email          string
	RoleID         string
	RoleName       string
	JoinedAt       time.Time
}

// Invitation is a pending offer for an email address to join an organization.
type Invitation struct {
	ID             string
	OrganizationID string
	Email          string
	RoleID         string
	RoleName       string
	Token          string
	InvitedBy      string
	CreatedAt      time.Time
	AcceptedAt     *time.Time
}

func (i *Invitation) IsPending() bool {
	return i.AcceptedAt == nil
}
