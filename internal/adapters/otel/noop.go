package otel

import (
	"context"
	"time"
)

// NoOpRecorder is a metrics recorder that does nothing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a recorder for when metrics export is disabled.
func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (NoOpRecorder) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
}

func (NoOpRecorder) RecordOperation(ctx context.Context, operation string, err error) {}

func (NoOpRecorder) RecordAnalysis(ctx context.Context, duration time.Duration, err error) {}

func (NoOpRecorder) Close(ctx context.Context) error {
	return nil
}
