package validator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

type fakeCatalog struct {
	available  bool
	info       map[string]ports.ExternalTrackInfo
	genres     map[string][]string
	artistIDs  []string
	infoCalls  int
	searchHits int
}

func (f *fakeCatalog) IsAvailable() bool { return f.available }

func (f *fakeCatalog) SearchTracks(_ context.Context, _ string, _ int, _ string) []ports.RawExternalTrack {
	f.searchHits++
	if len(f.artistIDs) == 0 {
		return nil
	}
	return []ports.RawExternalTrack{{ID: "r1", ArtistIDs: f.artistIDs}}
}

func (f *fakeCatalog) SearchByMood(_ context.Context, _, _, _ string, _ int) []ports.RawExternalTrack {
	return nil
}

func (f *fakeCatalog) GetTrackInfo(_ context.Context, id string) (ports.ExternalTrackInfo, bool) {
	f.infoCalls++
	info, ok := f.info[id]
	return info, ok
}

func (f *fakeCatalog) GetArtistsGenresBatch(_ context.Context, ids []string) map[string][]string {
	out := make(map[string][]string)
	for _, id := range ids {
		if g, ok := f.genres[id]; ok {
			out[id] = g
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateAndEnrich_ExternalOverrides(t *testing.T) {
	catalog := &fakeCatalog{
		available: true,
		info: map[string]ports.ExternalTrackInfo{
			"id1": {
				ID:          "id1",
				Name:        "Feel Good Inc.",
				Artist:      "Gorillaz",
				ReleaseDate: "2005-05-09",
				URL:         "https://open.spotify.com/track/id1",
			},
		},
		artistIDs: []string{"a1"},
		genres:    map[string][]string{"a1": {"alternative rock", "trip hop"}},
	}
	v := New(catalog, testLogger())

	tracks := []domain.Track{{
		CatalogID: "id1",
		Name:      "feel good inc",
		Artist:    "gorillaz",
		Year:      2004,
		Genres:    []string{"pop"},
	}}
	got := v.ValidateAndEnrich(context.Background(), tracks, 3)
	require.Len(t, got, 1)

	assert.True(t, got[0].IsVerified)
	assert.Equal(t, domain.SourceExternal, got[0].VerificationSource)
	assert.Equal(t, "Feel Good Inc.", got[0].Name)
	assert.Equal(t, "Gorillaz", got[0].Artist)
	assert.Equal(t, 2005, got[0].Year)
	assert.Equal(t, []string{"alternative rock", "trip hop"}, got[0].Genres)
	assert.Equal(t, "https://open.spotify.com/track/id1", got[0].URL)
}

func TestValidateAndEnrich_BudgetLimitsExternalCalls(t *testing.T) {
	catalog := &fakeCatalog{available: true, info: map[string]ports.ExternalTrackInfo{}}
	v := New(catalog, testLogger())

	tracks := []domain.Track{
		{CatalogID: "a", Name: "One", Artist: "X"},
		{CatalogID: "b", Name: "Two", Artist: "Y"},
		{CatalogID: "c", Name: "Three", Artist: "Z"},
		{CatalogID: "d", Name: "Four", Artist: "W"},
	}
	got := v.ValidateAndEnrich(context.Background(), tracks, 2)

	require.Len(t, got, 4)
	assert.Equal(t, 2, catalog.infoCalls)
	for _, vt := range got {
		assert.False(t, vt.IsVerified)
		assert.Equal(t, domain.SourceDataset, vt.VerificationSource)
	}
}

func TestValidateAndEnrich_UnavailableCatalogSkipsVerification(t *testing.T) {
	catalog := &fakeCatalog{available: false}
	v := New(catalog, testLogger())

	got := v.ValidateAndEnrich(context.Background(), []domain.Track{{CatalogID: "a", Name: "One", Artist: "X"}}, 5)
	require.Len(t, got, 1)
	assert.Zero(t, catalog.infoCalls)
	assert.False(t, got[0].IsVerified)
}

func TestValidateAndEnrich_UnknownArtistPlaceholder(t *testing.T) {
	v := New(&fakeCatalog{}, testLogger())

	for _, raw := range []string{"", "unknown", "NaN", "None", "  "} {
		got := v.ValidateAndEnrich(context.Background(), []domain.Track{{CatalogID: "a", Name: "Song", Artist: raw}}, 0)
		require.Len(t, got, 1)
		assert.Equal(t, "Unknown Artist", got[0].Artist, "raw artist %q", raw)
	}
}

func TestValidateAndEnrich_URLBackfill(t *testing.T) {
	v := New(&fakeCatalog{}, testLogger())

	got := v.ValidateAndEnrich(context.Background(), []domain.Track{{CatalogID: "tr42", Name: "Song", Artist: "A"}}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "https://open.spotify.com/track/tr42", got[0].URL)
}

func TestDeriveLanguage(t *testing.T) {
	tests := []struct {
		name    string
		track   string
		artist  string
		current string
		want    string
	}{
		{"cyrillic majority", "Выхода нет", "Сплин", "other", "ru"},
		{"latin majority", "Yellow Submarine", "The Beatles", "other", "en"},
		{"mixed with cyrillic forces ru", "Gorod pod подошвой", "Oxxxymiron х Гость", "other", "ru"},
		{"digits only keeps instrumental", "1234", "5678", "instrumental", "instrumental"},
		{"digits only defaults en", "1234", "5678", "other", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveLanguage(tt.track, tt.artist, tt.current))
		})
	}
}
