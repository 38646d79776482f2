package ports

import (
	"context"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

// InferenceProvider is the LLM-backed parameter-inference and response
// generation service. Analyze may fail; the generation calls never do, they
// fall back to fixed strings internally.
type InferenceProvider interface {
	// Analyze maps the extracted intent to a feature target and filter set.
	// A non-nil error means the caller must degrade to the deterministic
	// emotion-profile fallback.
	Analyze(ctx context.Context, intent domain.UserIntent) (domain.MusicAnalysis, error)

	// GenerateResponse produces the user-facing text for a finished
	// recommendation.
	GenerateResponse(ctx context.Context, tracks []domain.ValidatedTrack, intent domain.UserIntent, mood string) string

	// GenerateClarification asks the user for more detail when the request
	// carried too little signal to recommend anything.
	GenerateClarification(ctx context.Context, intent domain.UserIntent) string
}
