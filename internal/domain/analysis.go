package domain

import "time"

// MetricRow is one raw observation uploaded for a test.
type MetricRow struct {
	ID          int64
	TestID      string
	Variation   string
	Date        time.Time
	Visitors    int64
	Conversions int64
	Revenue     float64
	Segment     string
}

type AnalysisFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Segment   string
}

type AnalysisRequest struct {
	TestID  string
	Metric  string
	Rows    []MetricRow
	Filters AnalysisFilters
}

// VariationResult is the per-variation output of the analysis service,
// decorated locally with display helpers.
type VariationResult struct {
	Variation      string
	IsControl      bool
	Visitors       int64
	Conversions    int64
	ConversionRate float64
	Uplift         float64
	Confidence     float64
	PValue         float64

	// Filled in after matching against the test's defined variations.
	MatchedVariationID string
	ConfidenceLevel    ConfidenceLevel
	UpliftColor        string
}

type AnalysisResult struct {
	TestID      string
	Metric      string
	Results     []VariationResult
	GeneratedAt time.Time
	Unmatched   []string
}
