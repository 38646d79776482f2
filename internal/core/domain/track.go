package domain

import (
	"fmt"
	"strings"
)

// FeatureTarget is the point in feature space recommendations are ranked
// against. The 0-1 features follow the catalog's audio-feature scale; tempo
// is BPM in the soft range 60-200.
type FeatureTarget struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Tempo        float64 `json:"tempo"`
}

// FilterSet narrows the candidate pool before ranking. Zero values mean
// "no constraint". Artist is free text as spoken, before alias resolution.
type FilterSet struct {
	Genres    []string `json:"genres,omitempty"`
	Language  string   `json:"language,omitempty"`
	YearStart int      `json:"year_start,omitempty"`
	YearEnd   int      `json:"year_end,omitempty"`
	Artist    string   `json:"artist,omitempty"`
}

// Track is a ranked catalog entry. Distance is the weighted feature-space
// distance to the request's FeatureTarget, zero for externally sourced
// tracks that never went through ranking.
type Track struct {
	CatalogID    string   `json:"catalog_id"`
	Name         string   `json:"name"`
	Artist       string   `json:"artist"`
	Year         int      `json:"year,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Language     string   `json:"language"`
	Valence      float64  `json:"valence"`
	Energy       float64  `json:"energy"`
	Danceability float64  `json:"danceability"`
	Acousticness float64  `json:"acousticness"`
	Tempo        float64  `json:"tempo"`
	URL          string   `json:"url,omitempty"`
	Distance     float64  `json:"distance"`
}

// NameKey is the deduplication identity: lower-cased, trimmed track name.
func (t Track) NameKey() string {
	return strings.ToLower(strings.TrimSpace(t.Name))
}

// ExternalURL derives the public catalog link when only the ID is known.
func (t Track) ExternalURL() string {
	if t.URL != "" {
		return t.URL
	}
	if t.CatalogID == "" || t.CatalogID == "nan" {
		return ""
	}
	return fmt.Sprintf("https://open.spotify.com/track/%s", t.CatalogID)
}

// Verification sources for ValidatedTrack.
const (
	SourceDataset  = "dataset"
	SourceExternal = "external"
)

// ValidatedTrack is a Track after reconciliation against the external
// catalog. External data overrides local fields when a lookup succeeded.
type ValidatedTrack struct {
	Track
	IsVerified         bool   `json:"is_verified"`
	VerificationSource string `json:"verification_source"`
}

// CatalogRecord is one row of the tabular catalog source after load-time
// parsing: list-encoded columns are already split, language defaulted.
type CatalogRecord struct {
	CatalogID    string
	Name         string
	Artists      []string
	ArtistNorm   string
	Year         int
	Genres       []string
	Language     string
	Valence      float64
	Energy       float64
	Danceability float64
	Acousticness float64
	Tempo        float64
}

// DisplayArtist joins the parsed artist list for presentation.
func (r CatalogRecord) DisplayArtist() string {
	return strings.Join(r.Artists, ", ")
}
