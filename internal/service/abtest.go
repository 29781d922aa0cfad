package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

const DefaultPageSize = 20

type ABTestService struct {
	*common
	tests    ports.ABTestRepository
	versions ports.TestVersionRepository
}

type TestInput struct {
	Name          string     `form:"name" validate:"required,max=120"`
	Hypothesis    string     `form:"hypothesis" validate:"max=2000"`
	Description   string     `form:"description" validate:"max=5000"`
	PrimaryMetric string     `form:"primary_metric" validate:"required,max=64"`
	StartDate     *time.Time `form:"start_date"`
	EndDate       *time.Time `form:"end_date"`

	// Variations, when given on create, become version 1 with the first
	// name as control and traffic split evenly.
	Variations []string `form:"variations" validate:"omitempty,min=2,max=10,dive,max=80"`
}

// TestPage is one page of an organization's tests.
type TestPage struct {
	Tests      []*domain.ABTestSummary
	Status     string
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// List pages through tests, optionally filtered by status.
func (s *ABTestService) List(ctx context.Context, p *auth.Principal, orgID, status string, page int) (*TestPage, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	filter := domain.TestFilter{Limit: DefaultPageSize, Offset: (page - 1) * DefaultPageSize}
	if status != "" {
		st, err := domain.ParseTestStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	tests, err := s.tests.ListByOrganization(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tests.Count(ctx, orgID, filter.Status)
	if err != nil {
		return nil, err
	}

	return &TestPage{
		Tests:      tests,
		Status:     status,
		Page:       page,
		PageSize:   DefaultPageSize,
		Total:      total,
		TotalPages: int((total + DefaultPageSize - 1) / DefaultPageSize),
	}, nil
}

// StatusCounts returns the number of tests per status for the dashboard.
func (s *ABTestService) StatusCounts(ctx context.Context, p *auth.Principal, orgID string) (map[domain.TestStatus]int64, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	return s.tests.CountByStatus(ctx, orgID)
}

func (s *ABTestService) Get(ctx context.Context, p *auth.Principal, orgID, id string) (*domain.ABTestSummary, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermViewTests); err != nil {
		return nil, err
	}
	return loadTest(ctx, s.tests, orgID, id)
}

func (s *ABTestService) Create(ctx context.Context, p *auth.Principal, orgID string, in TestInput) (*domain.ABTestSummary, error) {
	test, err := s.create(ctx, p, orgID, in)
	return test, s.record(ctx, "tests.create", err)
}

func (s *ABTestService) create(ctx context.Context, p *auth.Principal, orgID string, in TestInput) (*domain.ABTestSummary, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}
	in = cleanTestInput(in)
	if err := validateTestInput(in); err != nil {
		return nil, err
	}

	var version *domain.TestVersion
	if len(in.Variations) > 0 {
		version = s.initialVersion(p, in.Variations)
		if err := version.Validate(); err != nil {
			return nil, err
		}
	}

	existing, err := s.tests.GetByName(ctx, orgID, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("test %q already exists: %w", in.Name, domain.ErrConflict)
	}

	now := s.now()
	test := &domain.ABTestSummary{
		ID:             s.newID(),
		OrganizationID: orgID,
		Name:           in.Name,
		Hypothesis:     in.Hypothesis,
		Description:    in.Description,
		Status:         domain.StatusDraft,
		PrimaryMetric:  in.PrimaryMetric,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		CreatedBy:      p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}

	if version != nil {
		version.TestID = test.ID
		if err := s.versions.Create(ctx, version); err != nil {
			return nil, err
		}
		test.LatestVersion = version.VersionNumber
	}
	return test, nil
}

func (s *ABTestService) initialVersion(p *auth.Principal, names []string) *domain.TestVersion {
	weights := domain.EvenWeights(len(names))
	v := &domain.TestVersion{
		ID:        s.newID(),
		Notes:     "Initial variations",
		CreatedBy: p.UserID,
		CreatedAt: s.now(),
	}
	for i, name := range names {
		v.Variations = append(v.Variations, domain.Variation{
			ID:            s.newID(),
			Name:          name,
			IsControl:     i == 0,
			TrafficWeight: weights[i],
		})
	}
	return v
}

// Update edits the descriptive fields of a test. Archived tests are frozen.
func (s *ABTestService) Update(ctx context.Context, p *auth.Principal, orgID, id string, in TestInput) (*domain.ABTestSummary, error) {
	test, err := s.update(ctx, p, orgID, id, in)
	return test, s.record(ctx, "tests.update", err)
}

func (s *ABTestService) update(ctx context.Context, p *auth.Principal, orgID, id string, in TestInput) (*domain.ABTestSummary, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}
	in = cleanTestInput(in)
	in.Variations = nil
	if err := validateTestInput(in); err != nil {
		return nil, err
	}

	test, err := loadTest(ctx, s.tests, orgID, id)
	if err != nil {
		return nil, err
	}
	if test.Status == domain.StatusArchived {
		return nil, fmt.Errorf("archived tests cannot be edited: %w", domain.ErrConflict)
	}

	if test.Name != in.Name {
		other, err := s.tests.GetByName(ctx, orgID, in.Name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, fmt.Errorf("test %q already exists: %w", in.Name, domain.ErrConflict)
		}
	}

	test.Name = in.Name
	test.Hypothesis = in.Hypothesis
	test.Description = in.Description
	test.PrimaryMetric = in.PrimaryMetric
	test.StartDate = in.StartDate
	test.EndDate = in.EndDate
	test.UpdatedAt = s.now()
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

// ChangeStatus moves a test through its lifecycle. Starting a test needs at
// least one version; the first start and the completion stamp the dates.
func (s *ABTestService) ChangeStatus(ctx context.Context, p *auth.Principal, orgID, id, status string) (*domain.ABTestSummary, error) {
	test, err := s.changeStatus(ctx, p, orgID, id, status)
	return test, s.record(ctx, "tests.change_status", err)
}

func (s *ABTestService) changeStatus(ctx context.Context, p *auth.Principal, orgID, id, status string) (*domain.ABTestSummary, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}
	to, err := domain.ParseTestStatus(status)
	if err != nil {
		return nil, err
	}

	test, err := loadTest(ctx, s.tests, orgID, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(test.Status, to) {
		return nil, fmt.Errorf("cannot move test from %s to %s: %w", test.Status, to, domain.ErrConflict)
	}
	if to == domain.StatusRunning && test.LatestVersion == 0 {
		return nil, domain.NewValidationError("status", "define variations before starting the test")
	}

	if err := s.tests.UpdateStatus(ctx, orgID, id, to); err != nil {
		return nil, err
	}
	test.Status = to

	now := s.now()
	stamp := false
	if to == domain.StatusRunning && test.StartDate == nil {
		test.StartDate = &now
		stamp = true
	}
	if to == domain.StatusCompleted && test.EndDate == nil {
		test.EndDate = &now
		stamp = true
	}
	test.UpdatedAt = now
	if stamp {
		if err := s.tests.Update(ctx, test); err != nil {
			return nil, err
		}
	}
	return test, nil
}

func (s *ABTestService) Delete(ctx context.Context, p *auth.Principal, orgID, id string) error {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermDeleteTests); err != nil {
		return s.record(ctx, "tests.delete", err)
	}
	return s.record(ctx, "tests.delete", s.tests.Delete(ctx, orgID, id))
}

func loadTest(ctx context.Context, tests ports.ABTestRepository, orgID, id string) (*domain.ABTestSummary, error) {
	test, err := tests.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("test: %w", domain.ErrNotFound)
	}
	return test, nil
}

func cleanTestInput(in TestInput) TestInput {
	in.Name = sanitize(in.Name)
	in.Hypothesis = sanitize(in.Hypothesis)
	in.Description = sanitize(in.Description)
	in.PrimaryMetric = strings.ToLower(sanitize(in.PrimaryMetric))

	var names []string
	for _, n := range in.Variations {
		if n = sanitize(n); n != "" {
			names = append(names, n)
		}
	}
	in.Variations = names
	return in
}

func validateTestInput(in TestInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return domain.NewValidationError("end_date", "must not be before the start date")
	}
	return nil
}
