package domain

import (
	"context"
	"time"
)

// DetectionProvider abstracts the external audio-fingerprinting service.
// One call covers one (stream, UTC calendar date) pair and returns every
// recognition the provider reported for it, in provider order.
type DetectionProvider interface {
	// FetchDetections retrieves raw detection events for a stream on a UTC
	// calendar date within the given provider-side project. Events carry UTC
	// timestamps only; local-time conversion happens in the normalizer. A
	// non-success provider response yields a *ProviderError.
	FetchDetections(ctx context.Context, projectID, streamID string, utcDate time.Time) ([]DetectionEvent, error)
}

// ReportService builds a complete reconciliation report for a project:
// schedule expansion, detection normalization, matching and aggregation.
type ReportService interface {
	// GenerateReport validates the project, fetches and normalizes all
	// detections, matches them against the expanded schedule and returns the
	// classified, aggregated report. Any provider failure aborts the whole
	// report; no partial result is returned.
	GenerateReport(ctx context.Context, project *Project) (*Report, error)
}

// ReportEmitter renders a built report into a downloadable artifact
type ReportEmitter interface {
	// Emit serializes the report into spreadsheet bytes
	Emit(report *Report) ([]byte, error)

	// ContentType returns the MIME type of the emitted artifact
	ContentType() string

	// Filename returns the timestamp-suffixed attachment name for the report
	Filename(report *Report) string
}
