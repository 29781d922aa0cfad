package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

const (
	dateLayout   = "2006-01-02"
	maxErrorBody = 512
)

// Client calls the external statistics service's POST /analyze endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new analysis client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("analysis service URL not configured")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type analyzeRequest struct {
	TestID  string         `json:"test_id"`
	Metric  string         `json:"metric"`
	Rows    []metricRow    `json:"rows"`
	Filters analyzeFilters `json:"filters"`
}

type metricRow struct {
	Variation   string  `json:"variation"`
	Date        string  `json:"date"`
	Visitors    int64   `json:"visitors"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	Segment     string  `json:"segment,omitempty"`
}

type analyzeFilters struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Segment   string `json:"segment,omitempty"`
}

// analyzeResponse is the JSON returned by the analysis service.
type analyzeResponse struct {
	TestID      string `json:"test_id"`
	Metric      string `json:"metric"`
	GeneratedAt string `json:"generated_at"`
	Results     []struct {
		Variation      string  `json:"variation"`
		IsControl      bool    `json:"is_control"`
		Visitors       int64   `json:"visitors"`
		Conversions    int64   `json:"conversions"`
		ConversionRate float64 `json:"conversion_rate"`
		Uplift         float64 `json:"uplift"`
		Confidence     float64 `json:"confidence"`
		PValue         float64 `json:"p_value"`
	} `json:"results"`
}

func (c *Client) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	body, err := json.Marshal(toWire(req))
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return fromWire(&out), nil
}

func toWire(req *domain.AnalysisRequest) analyzeRequest {
	w := analyzeRequest{
		TestID: req.TestID,
		Metric: req.Metric,
		Rows:   make([]metricRow, 0, len(req.Rows)),
		Filters: analyzeFilters{
			Segment: req.Filters.Segment,
		},
	}
	if req.Filters.StartDate != nil {
		w.Filters.StartDate = req.Filters.StartDate.Format(dateLayout)
	}
	if req.Filters.EndDate != nil {
		w.Filters.EndDate = req.Filters.EndDate.Format(dateLayout)
	}
	for _, r := range req.Rows {
		w.Rows = append(w.Rows, metricRow{
			Variation:   r.Variation,
			Date:        r.Date.Format(dateLayout),
			Visitors:    r.Visitors,
			Conversions: r.Conversions,
			Revenue:     r.Revenue,
			Segment:     r.Segment,
		})
	}
	return w
}

func fromWire(resp *analyzeResponse) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		TestID: resp.TestID,
		Metric: resp.Metric,
	}
	if t, err := time.Parse(time.RFC3339, resp.GeneratedAt); err == nil {
		result.GeneratedAt = t.UTC()
	}
	for _, r := range resp.Results {
		result.Results = append(result.Results, domain.VariationResult{
			Variation:      r.Variation,
			IsControl:      r.IsControl,
			Visitors:       r.Visitors,
			Conversions:    r.Conversions,
			ConversionRate: r.ConversionRate,
			Uplift:         r.Uplift,
			Confidence:     r.Confidence,
			PValue:         r.PValue,
		})
	}
	return result
}
