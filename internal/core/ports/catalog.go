package ports

import "context"

// RawExternalTrack is an unreconciled search result from the external
// catalog, prior to validation and language re-derivation.
type RawExternalTrack struct {
	ID          string
	Name        string
	Artist      string
	ArtistIDs   []string
	Album       string
	ReleaseDate string
	Popularity  int
	URL         string
}

// ExternalTrackInfo is a single-track lookup result used for verification.
type ExternalTrackInfo struct {
	ID          string
	Name        string
	Artist      string
	Album       string
	ReleaseDate string
	URL         string
}

// ExternalCatalogProvider wraps the remote music-catalog API. Every call
// degrades to an empty result on transport failure; none of them retry.
type ExternalCatalogProvider interface {
	// IsAvailable reports whether the provider can serve calls. The answer
	// is computed once and cached for the process lifetime.
	IsAvailable() bool

	SearchTracks(ctx context.Context, query string, limit int, market string) []RawExternalTrack
	SearchByMood(ctx context.Context, mood, genre, language string, limit int) []RawExternalTrack
	GetTrackInfo(ctx context.Context, id string) (ExternalTrackInfo, bool)
	GetArtistsGenresBatch(ctx context.Context, ids []string) map[string][]string
}
