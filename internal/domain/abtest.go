package domain

import (
	"fmt"
	"time"
)

type TestStatus string

const (
	StatusDraft     TestStatus = "draft"
	StatusRunning   TestStatus = "running"
	StatusPaused    TestStatus = "paused"
	StatusCompleted TestStatus = "completed"
	StatusArchived  TestStatus = "archived"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []TestStatus{StatusDraft, StatusRunning, StatusPaused, StatusCompleted, StatusArchived}

func ParseTestStatus(s string) (TestStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown status %q", s))
}

// CanTransition reports whether a test may move from one status to another.
func CanTransition(from, to TestStatus) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusArchived:
		return from != StatusArchived
	case StatusRunning:
		return from == StatusDraft || from == StatusPaused
	case StatusPaused:
		return from == StatusRunning
	case StatusCompleted:
		return from == StatusRunning || from == StatusPaused
	default:
		return false
	}
}

// ABTestSummary mirrors a row of ab_tests_summary.
type ABTestSummary struct {
	ID             string
	OrganizationID string
	Name           string
	Hypothesis     string
	Description    string
	Status         TestStatus
	PrimaryMetric  string
	StartDate      *time.Time
	EndDate        *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LatestVersion  int
}

// TestFilter narrows ab_tests_summary listings.
type TestFilter struct {
	Status *TestStatus
	Limit  int
	Offset int
}
