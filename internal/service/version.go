package service

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

type VersionService struct {
	*common
	tests    ports.ABTestRepository
	versions ports.TestVersionRepository
}

type VariationInput struct {
	Name          string `form:"name" validate:"required,max=80"`
	Description   string `form:"description" validate:"max=500"`
	IsControl     bool   `form:"is_control"`
	TrafficWeight int    `form:"traffic_weight" validate:"gte=0,lte=100"`
}

type VersionInput struct {
	Notes      string           `form:"notes" validate:"max=2000"`
	Variations []VariationInput `form:"variations" validate:"min=2,max=10,dive"`
}

// List returns a test's versions newest first, without variations.
func (s *VersionService) List(ctx context.Context, p *auth.Principal, orgID, testID string) ([]*domain.TestVersion, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	if _, err := loadTest(ctx, s.tests, orgID, testID); err != nil {
		return nil, err
	}
	return s.versions.ListByTest(ctx, testID)
}

func (s *VersionService) Get(ctx context.Context, p *auth.Principal, orgID, testID string, number int) (*domain.TestVersion, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	if _, err := loadTest(ctx, s.tests, orgID, testID); err != nil {
		return nil, err
	}
	v, err := s.versions.GetByNumber(ctx, testID, number)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("version %d: %w", number, domain.ErrNotFound)
	}
	return v, nil
}

// Latest returns the newest version, or nil when the test has none yet.
func (s *VersionService) Latest(ctx context.Context, p *auth.Principal, orgID, testID string) (*domain.TestVersion, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	if _, err := loadTest(ctx, s.tests, orgID, testID); err != nil {
		return nil, err
	}
	return s.versions.GetLatest(ctx, testID)
}

// Create stores a new version of the test's variations. Completed and
// archived tests no longer accept versions.
func (s *VersionService) Create(ctx context.Context, p *auth.Principal, orgID, testID string, in VersionInput) (*domain.TestVersion, error) {
	v, err := s.create(ctx, p, orgID, testID, in)
	return v, s.record(ctx, "versions.create", err)
}

func (s *VersionService) create(ctx context.Context, p *auth.Principal, orgID, testID string, in VersionInput) (*domain.TestVersion, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}

	in.Notes = sanitize(in.Notes)
	for i := range in.Variations {
		in.Variations[i].Name = sanitize(in.Variations[i].Name)
		in.Variations[i].Description = sanitize(in.Variations[i].Description)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	test, err := loadTest(ctx, s.tests, orgID, testID)
	if err != nil {
		return nil, err
	}
	if test.Status == domain.StatusCompleted || test.Status == domain.StatusArchived {
		return nil, fmt.Errorf("test is %s: %w", test.Status, domain.ErrConflict)
	}

	v := &domain.TestVersion{
		ID:        s.newID(),
		TestID:    testID,
		Notes:     in.Notes,
		CreatedBy: p.UserID,
		CreatedAt: s.now(),
	}
	for _, vi := range in.Variations {
		v.Variations = append(v.Variations, domain.Variation{
			ID:            s.newID(),
			Name:          vi.Name,
			Description:   vi.Description,
			IsControl:     vi.IsControl,
			TrafficWeight: vi.TrafficWeight,
		})
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := s.versions.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
