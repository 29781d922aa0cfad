package ports

import (
	"context"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

// AnalysisClient calls the external statistics service.
type AnalysisClient interface {
	Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// HypothesisPrompt is the context handed to a hypothesis generator.
type HypothesisPrompt struct {
	TestName      string
	Description   string
	PrimaryMetric string
	Variations    []string
	Count         int
}

// HypothesisGenerator drafts test hypotheses with a language model.
type HypothesisGenerator interface {
	Generate(ctx context.Context, prompt HypothesisPrompt) ([]string, error)
}
