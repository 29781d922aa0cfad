package service

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

const (
	defaultHypotheses = 3
	maxHypotheses     = 10
)

type HypothesisService struct {
	*common
	tests     ports.ABTestRepository
	versions  ports.TestVersionRepository
	generator ports.HypothesisGenerator
}

func (s *HypothesisService) Available() bool {
	return s.generator != nil
}

// Generate drafts hypotheses for a test from its name, description, metric
// and current variations.
func (s *HypothesisService) Generate(ctx context.Context, p *auth.Principal, orgID, testID string, count int) ([]string, error) {
	out, err := s.generate(ctx, p, orgID, testID, count)
	return out, s.record(ctx, "hypotheses.generate", err)
}

func (s *HypothesisService) generate(ctx context.Context, p *auth.Principal, orgID, testID string, count int) ([]string, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, fmt.Errorf("hypothesis generation is not configured: %w", domain.ErrUnavailable)
	}

	switch {
	case count <= 0:
		count = defaultHypotheses
	case count > maxHypotheses:
		count = maxHypotheses
	}

	test, err := loadTest(ctx, s.tests, orgID, testID)
	if err != nil {
		return nil, err
	}
	prompt := ports.HypothesisPrompt{
		TestName:      test.Name,
		Description:   test.Description,
		PrimaryMetric: test.PrimaryMetric,
		Count:         count,
	}
	version, err := s.versions.GetLatest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if version != nil {
		for _, v := range version.Variations {
			prompt.Variations = append(prompt.Variations, v.Name)
		}
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate hypotheses: %w", err)
	}

	var out []string
	for _, h := range raw {
		if h = sanitize(h); h != "" {
			out = append(out, h)
		}
		if len(out) == count {
			break
		}
	}
	return out, nil
}
