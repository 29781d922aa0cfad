package ports

import (
	"context"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// ABTestRepository wraps the ab_tests_summary table.
type ABTestRepository interface {
	Create(ctx context.Context, test *domain.ABTestSummary) error
	GetByID(ctx context.Context, orgID, id string) (*domain.ABTestSummary, error)
	GetByName(ctx context.Context, orgID, name string) (*domain.ABTestSummary, error)
	ListByOrganization(ctx context.Context, orgID string, filter domain.TestFilter) ([]*domain.ABTestSummary, error)
	Count(ctx context.Context, orgID string, status *domain.TestStatus) (int64, error)
	CountByStatus(ctx context.Context, orgID string) (map[domain.TestStatus]int64, error)
	Update(ctx context.Context, test *domain.ABTestSummary) error
	UpdateStatus(ctx context.Context, orgID, id string, status domain.TestStatus) error
	Delete(ctx context.Context, orgID, id string) error
}

// TestVersionRepository wraps test_versions and their variations.
type TestVersionRepository interface {
	// Create assigns the next version number and stores the version with its
	// variations atomically.
	Create(ctx context.Context, version *domain.TestVersion) error
	GetByNumber(ctx context.Context, testID string, number int) (*domain.TestVersion, error)
	GetLatest(ctx context.Context, testID string) (*domain.TestVersion, error)
	ListByTest(ctx context.Context, testID string) ([]*domain.TestVersion, error)
}

type MetricRowRepository interface {
	InsertBatch(ctx context.Context, rows []domain.MetricRow) error
	ListByTest(ctx context.Context, testID string, filters domain.AnalysisFilters) ([]domain.MetricRow, error)
	CountByTest(ctx context.Context, testID string) (int64, error)
	DeleteByTest(ctx context.Context, testID string) error
	ReplaceByTest(ctx context.Context, testID string, rows []domain.MetricRow) error
}
