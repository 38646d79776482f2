package ports

import (
	"context"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

// AudioAnalyzer turns a raw voice clip into a transcript plus emotion.
// The pipeline trusts the returned status verbatim.
type AudioAnalyzer interface {
	Process(ctx context.Context, audio []byte, format string) domain.AudioAnalysis
}

// CatalogSource loads the full tabular catalog into memory. Implementations
// must fall back to a secondary known-good snapshot when the primary file is
// absent and fail only when neither exists.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.CatalogRecord, error)
}

// MetricsSink persists one append-only metrics record per request.
// Implementations serialize concurrent writers.
type MetricsSink interface {
	Append(ctx context.Context, rec domain.RequestMetrics) error
}
