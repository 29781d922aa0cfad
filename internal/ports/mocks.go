package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// MockOrganizationRepository is a mock implementation of OrganizationRepository for testing.
type MockOrganizationRepository struct {
	CreateFunc          func(ctx context.Context, org *domain.Organization) error
	CreateWithOwnerFunc func(ctx context.Context, org *domain.Organization, roles []*domain.Role, owner *domain.Member) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Organization, error)
	GetBySlugFunc       func(ctx context.Context, slug string) (*domain.Organization, error)
	ListFunc            func(ctx context.Context) ([]*domain.Organization, error)
	ListForUserFunc     func(ctx context.Context, userID string) ([]*domain.Organization, error)
	UpdateFunc          func(ctx context.Context, org *domain.Organization) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, org)
	}
	return nil
}

func (m *MockOrganizationRepository) CreateWithOwner(ctx context.Context, org *domain.Organization, roles []*domain.Role, owner *domain.Member) error {
	if m.CreateWithOwnerFunc != nil {
		return m.CreateWithOwnerFunc(ctx, org, roles, owner)
	}
	return nil
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *MockOrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockOrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Organization, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, org)
	}
	return nil
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockRoleRepository is a mock implementation of RoleRepository for testing.
type MockRoleRepository struct {
	CreateFunc             func(ctx context.Context, role *domain.Role) error
	GetByIDFunc            func(ctx context.Context, orgID, id string) (*domain.Role, error)
	GetByNameFunc          func(ctx context.Context, orgID, name string) (*domain.Role, error)
	ListByOrganizationFunc func(ctx context.Context, orgID string) ([]*domain.Role, error)
	UpdateFunc             func(ctx context.Context, role *domain.Role) error
	DeleteFunc             func(ctx context.Context, orgID, id string) error
}

func (m *MockRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, role)
	}
	return nil
}

func (m *MockRoleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Role, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *MockRoleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.Role, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, orgID, name)
	}
	return nil, nil
}

func (m *MockRoleRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Role, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, orgID)
	}
	return nil, nil
}

func (m *MockRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, role)
	}
	return nil
}

func (m *MockRoleRepository) Delete(ctx context.Context, orgID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, orgID, id)
	}
	return nil
}

// MockMemberRepository is a mock implementation of MemberRepository for testing.
type MockMemberRepository struct {
	AddFunc                func(ctx context.Context, member *domain.Member) error
	GetFunc                func(ctx context.Context, orgID, userID string) (*domain.Member, error)
	ListByOrganizationFunc func(ctx context.Context, orgID string) ([]*domain.Member, error)
	UpdateRoleFunc         func(ctx context.Context, orgID, userID, roleID string) error
	RemoveFunc             func(ctx context.Context, orgID, userID string) error
	CountByRoleFunc        func(ctx context.Context, orgID, roleID string) (int64, error)
}

func (m *MockMemberRepository) Add(ctx context.Context, member *domain.Member) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, member)
	}
	return nil
}

func (m *MockMemberRepository) Get(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, orgID, userID)
	}
	return nil, nil
}

func (m *MockMemberRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Member, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, orgID)
	}
	return nil, nil
}

func (m *MockMemberRepository) UpdateRole(ctx context.Context, orgID, userID, roleID string) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, orgID, userID, roleID)
	}
	return nil
}

func (m *MockMemberRepository) Remove(ctx context.Context, orgID, userID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, orgID, userID)
	}
	return nil
}

func (m *MockMemberRepository) CountByRole(ctx context.Context, orgID, roleID string) (int64, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, orgID, roleID)
	}
	return 0, nil
}

// MockInvitationRepository is a mock implementation of InvitationRepository for testing.
type MockInvitationRepository struct {
	CreateFunc      func(ctx context.Context, inv *domain.Invitation) error
	GetByIDFunc     func(ctx context.Context, orgID, id string) (*domain.Invitation, error)
	GetByTokenFunc  func(ctx context.Context, token string) (*domain.Invitation, error)
	ListPendingFunc func(ctx context.Context, orgID string) ([]*domain.Invitation, error)
	AcceptFunc      func(ctx context.Context, id string, member *domain.Member) error
	DeleteFunc      func(ctx context.Context, orgID, id string) error
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, inv)
	}
	return nil
}

func (m *MockInvitationRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Invitation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockInvitationRepository) ListPending(ctx context.Context, orgID string) ([]*domain.Invitation, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, orgID)
	}
	return nil, nil
}

func (m *MockInvitationRepository) Accept(ctx context.Context, id string, member *domain.Member) error {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, id, member)
	}
	return nil
}

func (m *MockInvitationRepository) Delete(ctx context.Context, orgID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, orgID, id)
	}
	return nil
}

// MockABTestRepository is a mock implementation of ABTestRepository for testing.
type MockABTestRepository struct {
	CreateFunc             func(ctx context.Context, test *domain.ABTestSummary) error
	GetByIDFunc            func(ctx context.Context, orgID, id string) (*domain.ABTestSummary, error)
	GetByNameFunc          func(ctx context.Context, orgID, name string) (*domain.ABTestSummary, error)
	ListByOrganizationFunc func(ctx context.Context, orgID string, filter domain.TestFilter) ([]*domain.ABTestSummary, error)
	CountFunc              func(ctx context.Context, orgID string, status *domain.TestStatus) (int64, error)
	CountByStatusFunc      func(ctx context.Context, orgID string) (map[domain.TestStatus]int64, error)
	UpdateFunc             func(ctx context.Context, test *domain.ABTestSummary) error
	UpdateStatusFunc       func(ctx context.Context, orgID, id string, status domain.TestStatus) error
	DeleteFunc             func(ctx context.Context, orgID, id string) error
}

func (m *MockABTestRepository) Create(ctx context.Context, test *domain.ABTestSummary) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, test)
	}
	return nil
}

func (m *MockABTestRepository) GetByID(ctx context.Context, orgID, id string) (*domain.ABTestSummary, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *MockABTestRepository) GetByName(ctx context.Context, orgID, name string) (*domain.ABTestSummary, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, orgID, name)
	}
	return nil, nil
}

func (m *MockABTestRepository) ListByOrganization(ctx context.Context, orgID string, filter domain.TestFilter) ([]*domain.ABTestSummary, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, orgID, filter)
	}
	return nil, nil
}

func (m *MockABTestRepository) Count(ctx context.Context, orgID string, status *domain.TestStatus) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, orgID, status)
	}
	return 0, nil
}

func (m *MockABTestRepository) CountByStatus(ctx context.Context, orgID string) (map[domain.TestStatus]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, orgID)
	}
	return nil, nil
}

func (m *MockABTestRepository) Update(ctx context.Context, test *domain.ABTestSummary) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, test)
	}
	return nil
}

func (m *MockABTestRepository) UpdateStatus(ctx context.Context, orgID, id string, status domain.TestStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, orgID, id, status)
	}
	return nil
}

func (m *MockABTestRepository) Delete(ctx context.Context, orgID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, orgID, id)
	}
	return nil
}

// MockTestVersionRepository is a mock implementation of TestVersionRepository for testing.
type MockTestVersionRepository struct {
	CreateFunc      func(ctx context.Context, version *domain.TestVersion) error
	GetByNumberFunc func(ctx context.Context, testID string, number int) (*domain.TestVersion, error)
	GetLatestFunc   func(ctx context.Context, testID string) (*domain.TestVersion, error)
	ListByTestFunc  func(ctx context.Context, testID string) ([]*domain.TestVersion, error)
}

func (m *MockTestVersionRepository) Create(ctx context.Context, version *domain.TestVersion) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, version)
	}
	return nil
}

func (m *MockTestVersionRepository) GetByNumber(ctx context.Context, testID string, number int) (*domain.TestVersion, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, testID, number)
	}
	return nil, nil
}

func (m *MockTestVersionRepository) GetLatest(ctx context.Context, testID string) (*domain.TestVersion, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, testID)
	}
	return nil, nil
}

func (m *MockTestVersionRepository) ListByTest(ctx context.Context, testID string) ([]*domain.TestVersion, error) {
	if m.ListByTestFunc != nil {
		return m.ListByTestFunc(ctx, testID)
	}
	return nil, nil
}

// MockMetricRowRepository is a mock implementation of MetricRowRepository for testing.
type MockMetricRowRepository struct {
	InsertBatchFunc   func(ctx context.Context, rows []domain.MetricRow) error
	ListByTestFunc    func(ctx context.Context, testID string, filters domain.AnalysisFilters) ([]domain.MetricRow, error)
	CountByTestFunc   func(ctx context.Context, testID string) (int64, error)
	DeleteByTestFunc  func(ctx context.Context, testID string) error
	ReplaceByTestFunc func(ctx context.Context, testID string, rows []domain.MetricRow) error
}

func (m *MockMetricRowRepository) InsertBatch(ctx context.Context, rows []domain.MetricRow) error {
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, rows)
	}
	return nil
}

func (m *MockMetricRowRepository) ListByTest(ctx context.Context, testID string, filters domain.AnalysisFilters) ([]domain.MetricRow, error) {
	if m.ListByTestFunc != nil {
		return m.ListByTestFunc(ctx, testID, filters)
	}
	return nil, nil
}

func (m *MockMetricRowRepository) CountByTest(ctx context.Context, testID string) (int64, error) {
	if m.CountByTestFunc != nil {
		return m.CountByTestFunc(ctx, testID)
	}
	return 0, nil
}

func (m *MockMetricRowRepository) DeleteByTest(ctx context.Context, testID string) error {
	if m.DeleteByTestFunc != nil {
		return m.DeleteByTestFunc(ctx, testID)
	}
	return nil
}

func (m *MockMetricRowRepository) ReplaceByTest(ctx context.Context, testID string, rows []domain.MetricRow) error {
	if m.ReplaceByTestFunc != nil {
		return m.ReplaceByTestFunc(ctx, testID, rows)
	}
	return nil
}

// MockAnalysisClient is a mock implementation of AnalysisClient for testing.
type MockAnalysisClient struct {
	AnalyzeFunc func(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

func (m *MockAnalysisClient) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return nil, nil
}

// MockHypothesisGenerator is a mock implementation of HypothesisGenerator for testing.
type MockHypothesisGenerator struct {
	GenerateFunc func(ctx context.Context, prompt HypothesisPrompt) ([]string, error)
}

func (m *MockHypothesisGenerator) Generate(ctx context.Context, prompt HypothesisPrompt) ([]string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return nil, nil
}

// MockMetricsRecorder is a mock implementation of MetricsRecorder for testing.
type MockMetricsRecorder struct {
	RecordRequestFunc   func(ctx context.Context, method, route string, status int, duration time.Duration)
	RecordOperationFunc func(ctx context.Context, operation string, err error)
	RecordAnalysisFunc  func(ctx context.Context, duration time.Duration, err error)
	CloseFunc           func(ctx context.Context) error
}

func (m *MockMetricsRecorder) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m.RecordRequestFunc != nil {
		m.RecordRequestFunc(ctx, method, route, status, duration)
	}
}

func (m *MockMetricsRecorder) RecordOperation(ctx context.Context, operation string, err error) {
	if m.RecordOperationFunc != nil {
		m.RecordOperationFunc(ctx, operation, err)
	}
}

func (m *MockMetricsRecorder) RecordAnalysis(ctx context.Context, duration time.Duration, err error) {
	if m.RecordAnalysisFunc != nil {
		m.RecordAnalysisFunc(ctx, duration, err)
	}
}

func (m *MockMetricsRecorder) Close(ctx context.Context) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}
