package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

const (
	maxImportRows   = 50000
	maxImportErrors = 10
)

type AnalysisService struct {
	*common
	tests    ports.ABTestRepository
	versions ports.TestVersionRepository
	rows     ports.MetricRowRepository
	client   ports.AnalysisClient
}

// Available reports whether an analysis service is configured.
func (s *AnalysisService) Available() bool {
	return s.client != nil
}

// ImportResult summarizes a metrics upload.
type ImportResult struct {
	Imported int
	Replaced bool
}

// ImportRows parses a CSV of raw metric rows and stores them for the test.
// With replace set, previously uploaded rows are swapped out atomically.
func (s *AnalysisService) ImportRows(ctx context.Context, p *auth.Principal, orgID, testID string, r io.Reader, replace bool) (*ImportResult, error) {
	res, err := s.importRows(ctx, p, orgID, testID, r, replace)
	return res, s.record(ctx, "metrics.import", err)
}

func (s *AnalysisService) importRows(ctx context.Context, p *auth.Principal, orgID, testID string, r io.Reader, replace bool) (*ImportResult, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermEditTests); err != nil {
		return nil, err
	}
	if _, err := loadTest(ctx, s.tests, orgID, testID); err != nil {
		return nil, err
	}

	rows, err := ParseMetricsCSV(r, testID)
	if err != nil {
		return nil, err
	}

	if replace {
		err = s.rows.ReplaceByTest(ctx, testID, rows)
	} else {
		err = s.rows.InsertBatch(ctx, rows)
	}
	if err != nil {
		return nil, err
	}
	return &ImportResult{Imported: len(rows), Replaced: replace}, nil
}

var csvColumns = map[string][]string{
	"variation":   {"variation", "variant", "group", "arm"},
	"date":        {"date", "day"},
	"visitors":    {"visitors", "users", "sessions"},
	"conversions": {"conversions", "converted"},
	"revenue":     {"revenue"},
	"segment":     {"segment"},
}

// ParseMetricsCSV reads rows with a header naming at least variation, date,
// visitors and conversions. Revenue and segment columns are optional.
func ParseMetricsCSV(r io.Reader, testID string) ([]domain.MetricRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError("file", "file is empty")
	}
	if err != nil {
		return nil, domain.NewValidationError("file", "not a valid CSV file: "+err.Error())
	}

	idx := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for col, aliases := range csvColumns {
			for _, a := range aliases {
				if h == a {
					if _, dup := idx[col]; !dup {
						idx[col] = i
					}
				}
			}
		}
	}
	verr := &domain.ValidationError{}
	for _, col := range []string{"variation", "date", "visitors", "conversions"} {
		if _, ok := idx[col]; !ok {
			verr.Add("file", "missing column "+col)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []domain.MetricRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			verr.Add(fmt.Sprintf("line %d", line), err.Error())
			break
		}
		if len(rows) >= maxImportRows {
			verr.Add("file", fmt.Sprintf("more than %d rows", maxImportRows))
			break
		}

		row, err := parseMetricRecord(testID, field(rec, "variation"), field(rec, "date"),
			field(rec, "visitors"), field(rec, "conversions"), field(rec, "revenue"), field(rec, "segment"))
		if err != nil {
			verr.Add(fmt.Sprintf("line %d", line), err.Error())
			if len(verr.Fields) >= maxImportErrors {
				break
			}
			continue
		}
		rows = append(rows, row)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("file", "no data rows")
	}
	return rows, nil
}

func parseMetricRecord(testID, variation, date, visitors, conversions, revenue, segment string) (domain.MetricRow, error) {
	row := domain.MetricRow{TestID: testID, Variation: variation, Segment: segment}
	if variation == "" {
		return row, errors.New("variation is empty")
	}

	d, err := parseDate(date)
	if err != nil {
		return row, err
	}
	row.Date = d

	if row.Visitors, err = parseCount("visitors", visitors); err != nil {
		return row, err
	}
	if row.Conversions, err = parseCount("conversions", conversions); err != nil {
		return row, err
	}
	if row.Conversions > row.Visitors {
		return row, fmt.Errorf("conversions (%d) exceed visitors (%d)", row.Conversions, row.Visitors)
	}

	if revenue != "" {
		row.Revenue, err = strconv.ParseFloat(revenue, 64)
		if err != nil || row.Revenue < 0 {
			return row, fmt.Errorf("invalid revenue %q", revenue)
		}
	}
	return row, nil
}

func parseCount(name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// RunInput narrows the rows sent for analysis.
type RunInput struct {
	Metric    string
	StartDate *time.Time
	EndDate   *time.Time
	Segment   string
}

// Run sends the test's raw rows to the analysis service and matches the
// returned variations against the latest version.
func (s *AnalysisService) Run(ctx context.Context, p *auth.Principal, orgID, testID string, in RunInput) (*domain.AnalysisResult, error) {
	res, err := s.run(ctx, p, orgID, testID, in)
	return res, s.record(ctx, "analysis.run", err)
}

func (s *AnalysisService) run(ctx context.Context, p *auth.Principal, orgID, testID string, in RunInput) (*domain.AnalysisResult, error) {
	if _, err := s.authz.Require(ctx, p, orgID, domain.PermRunAnalysis); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, fmt.Errorf("analysis service is not configured: %w", domain.ErrUnavailable)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, domain.NewValidationError("end_date", "must not be before the start date")
	}

	test, err := loadTest(ctx, s.tests, orgID, testID)
	if err != nil {
		return nil, err
	}
	version, err := s.versions.GetLatest(ctx, testID)
	if err != nil {
		return nil, err
	}

	filters := domain.AnalysisFilters{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Segment:   strings.TrimSpace(in.Segment),
	}
	rows, err := s.rows.ListByTest(ctx, testID, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("metrics", "no metric rows match the filters")
	}

	metric := strings.TrimSpace(in.Metric)
	if metric == "" {
		metric = test.PrimaryMetric
	}

	started := time.Now()
	result, err := s.client.Analyze(ctx, &domain.AnalysisRequest{
		TestID:  testID,
		Metric:  metric,
		Rows:    rows,
		Filters: filters,
	})
	if s.metrics != nil {
		s.metrics.RecordAnalysis(ctx, time.Since(started), err)
	}
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if result.TestID == "" {
		result.TestID = testID
	}
	if result.Metric == "" {
		result.Metric = metric
	}
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = s.now()
	}
	decorate(result, version)
	return result, nil
}

// decorate matches result rows to defined variations and attaches
// confidence labels and uplift colors.
func decorate(result *domain.AnalysisResult, version *domain.TestVersion) {
	var variations []domain.Variation
	if version != nil {
		variations = version.Variations
	}

	result.Unmatched = nil
	for i := range result.Results {
		r := &result.Results[i]
		if v, ok := domain.ResolveVariation(r.Variation, variations); ok {
			r.MatchedVariationID = v.ID
			r.Variation = v.Name
			r.IsControl = v.IsControl
		} else if len(variations) > 0 {
			result.Unmatched = append(result.Unmatched, r.Variation)
		}
		r.ConfidenceLevel = domain.ConfidenceLabel(r.Confidence)
		if r.IsControl {
			r.UpliftColor = domain.UpliftNeutral
		} else {
			r.UpliftColor = domain.UpliftColor(r.Uplift, r.Confidence)
		}
	}
}
