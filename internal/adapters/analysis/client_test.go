package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/abadmin/internal/domain"
)

func TestClient_Analyze(t *testing.T) {
	var got analyzeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"test_id": "t-1",
			"metric": "conversion_rate",
			"generated_at": "2026-05-04T10:00:00Z",
			"results": [
				{"variation": "A", "is_control": true, "visitors": 100, "conversions": 10, "conversion_rate": 0.1},
				{"variation": "B", "visitors": 100, "conversions": 13, "conversion_rate": 0.13, "uplift": 0.3, "confidence": 0.96, "p_value": 0.04}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	res, err := client.Analyze(context.Background(), &domain.AnalysisRequest{
		TestID: "t-1",
		Metric: "conversion_rate",
		Rows: []domain.MetricRow{
			{Variation: "A", Date: start, Visitors: 100, Conversions: 10},
			{Variation: "B", Date: start, Visitors: 100, Conversions: 13, Segment: "mobile"},
		},
		Filters: domain.AnalysisFilters{StartDate: &start, Segment: "mobile"},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	wantReq := analyzeRequest{
		TestID: "t-1",
		Metric: "conversion_rate",
		Rows: []metricRow{
			{Variation: "A", Date: "2026-05-01", Visitors: 100, Conversions: 10},
			{Variation: "B", Date: "2026-05-01", Visitors: 100, Conversions: 13, Segment: "mobile"},
		},
		Filters: analyzeFilters{StartDate: "2026-05-01", Segment: "mobile"},
	}
	if diff := cmp.Diff(wantReq, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}

	if len(res.Results) != 2 || !res.Results[0].IsControl || res.Results[1].PValue != 0.04 {
		t.Errorf("unexpected results %+v", res.Results)
	}
	if !res.GeneratedAt.Equal(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected generated_at %v", res.GeneratedAt)
	}
}

func TestClient_AnalyzeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 2000), http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, time.Second)
	_, err := client.Analyze(context.Background(), &domain.AnalysisRequest{TestID: "t-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || len(err.Error()) > maxErrorBody+64 {
		t.Errorf("unexpected error %q", err)
	}
}

func TestClient_AnalyzeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, 20*time.Millisecond)
	if _, err := client.Analyze(context.Background(), &domain.AnalysisRequest{}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("", time.Second); err == nil {
		t.Fatal("expected error for empty URL")
	}
}
