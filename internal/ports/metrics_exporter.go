package ports

import (
	"context"
	"time"
)

// MetricsRecorder records service-level metrics to an external observability system.
type MetricsRecorder interface {
	// RecordRequest records a served HTTP request.
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
	// RecordOperation records the outcome of a service operation such as "tests.create".
	RecordOperation(ctx context.Context, operation string, err error)
	// RecordAnalysis records a call to the analysis service.
	RecordAnalysis(ctx context.Context, duration time.Duration, err error)
	// Close shuts down the recorder and flushes any pending metrics.
	Close(ctx context.Context) error
}
