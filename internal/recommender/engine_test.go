package recommender

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

type staticSource struct {
	records []domain.CatalogRecord
}

func (s staticSource) Load(context.Context) ([]domain.CatalogRecord, error) {
	return s.records, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(id, name, artist, lang string, year int, genres []string, valence, energy float64) domain.CatalogRecord {
	return domain.CatalogRecord{
		CatalogID:    id,
		Name:         name,
		Artists:      []string{artist},
		Year:         year,
		Genres:       genres,
		Language:     lang,
		Valence:      valence,
		Energy:       energy,
		Danceability: 0.5,
		Acousticness: 0.5,
		Tempo:        120,
	}
}

func testCatalog() []domain.CatalogRecord {
	return []domain.CatalogRecord{
		rec("1", "Дорога", "Сплин", "ru", 2005, []string{"russian rock"}, 0.3, 0.4),
		rec("2", "Выхода нет", "Сплин", "ru", 2005, []string{"russian rock"}, 0.2, 0.5),
		rec("3", "Полковнику никто не пишет", "Би-2", "ru", 2005, []string{"russian rock"}, 0.35, 0.45),
		rec("4", "Небо", "Би-2", "ru", 2001, []string{"russian rock"}, 0.4, 0.5),
		rec("5", "Город", "Монеточка", "ru", 2018, []string{"russian pop"}, 0.7, 0.6),
		rec("6", "Hymn", "Unknown Band", "en", 2010, []string{"rock"}, 0.5, 0.7),
		rec("7", "Hymn", "Cover Band", "en", 2012, []string{"rock"}, 0.5, 0.7),
		rec("8", "Кукла колдуна", "Король и Шут", "ru", 2005, []string{"russian punk"}, 0.6, 0.9),
		rec("9", "Versus", "Oxxxymiron", "ru", 2015, []string{"russian hip hop"}, 0.4, 0.8),
		rec("10", "Где нас нет", "Oxxxymiron", "ru", 2016, []string{"russian hip hop"}, 0.35, 0.75),
	}
}

func newTestEngine(t *testing.T, records []domain.CatalogRecord) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), staticSource{records: records}, discard())
	require.NoError(t, err)
	return e
}

func TestRecommend_NeverExceedsTopKNorDuplicates(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	got := e.Recommend(domain.FeatureTarget{Valence: 0.5, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}, domain.FilterSet{}, 5)

	require.LessOrEqual(t, len(got.Tracks), 5)
	seen := map[string]struct{}{}
	for _, tr := range got.Tracks {
		_, dup := seen[tr.NameKey()]
		assert.False(t, dup, "duplicate normalized name %q", tr.NameKey())
		seen[tr.NameKey()] = struct{}{}
	}
}

func TestRecommend_DedupesNormalizedNames(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	got := e.Recommend(domain.FeatureTarget{Valence: 0.5, Energy: 0.7, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}, domain.FilterSet{Language: "en"}, 2)

	names := map[string]int{}
	for _, tr := range got.Tracks {
		names[tr.NameKey()]++
	}
	assert.LessOrEqual(t, names["hymn"], 1)
}

func TestRecommend_CascadeSkipsStarvingFilter(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	// year_start=2017 keeps only one record; with top_k=3 that filter must be
	// skipped so the pool is not starved.
	got := e.Recommend(domain.FeatureTarget{Valence: 0.5, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120},
		domain.FilterSet{Language: "ru", YearStart: 2017}, 3)

	require.Len(t, got.Tracks, 3)
	assert.Contains(t, got.FiltersApplied, FilterLanguage)
	assert.NotContains(t, got.FiltersApplied, FilterYearStart)
}

func TestRecommend_ArtistExactTierWins(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	got := e.Recommend(domain.FeatureTarget{Valence: 0.4, Energy: 0.8, Danceability: 0.5, Acousticness: 0.5, Tempo: 120},
		domain.FilterSet{Artist: "Oxxxymiron", Genres: []string{"pop"}, Language: "en"}, 2)

	require.Len(t, got.Tracks, 2)
	for _, tr := range got.Tracks {
		assert.Equal(t, "Oxxxymiron", tr.Artist)
	}
	// Artist intent overrides every other filter.
	assert.Equal(t, []string{FilterArtist}, got.FiltersApplied)
}

func TestRecommend_ArtistAliasAndTiers(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	// Cyrillic alias resolves to the canonical name, exact tier hits.
	got := e.Recommend(domain.FeatureTarget{Valence: 0.4, Energy: 0.8, Danceability: 0.5, Acousticness: 0.5, Tempo: 120},
		domain.FilterSet{Artist: "Оксимирон"}, 5)

	require.NotEmpty(t, got.Tracks)
	for _, tr := range got.Tracks {
		assert.Equal(t, "Oxxxymiron", tr.Artist)
	}
}

func TestSearchArtist_SubstringBeforeFuzzy(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	// "unknown" is not an exact artist name but is a substring of
	// "Unknown Band"; once the substring tier hits, fuzzy must never run.
	subset, tier := e.searchArtist(testCatalog(), "unknown")
	assert.Equal(t, "substring", tier)
	assert.Len(t, subset, 1)
}

func TestRecommend_EndToEndRussianRock2005(t *testing.T) {
	e := newTestEngine(t, testCatalog())

	got := e.Recommend(domain.FeatureTarget{Valence: 0.25, Energy: 0.35, Danceability: 0.35, Acousticness: 0.3, Tempo: 80},
		domain.FilterSet{Genres: []string{"rock"}, Language: "ru", YearStart: 2005, YearEnd: 2005}, 3)

	require.Len(t, got.Tracks, 3)
	for _, tr := range got.Tracks {
		assert.Equal(t, 2005, tr.Year)
		assert.Equal(t, "ru", tr.Language)
	}
	assert.ElementsMatch(t, []string{FilterLanguage, FilterGenre, FilterYearStart, FilterYearEnd}, got.FiltersApplied)
}

func TestDistance_Properties(t *testing.T) {
	target := domain.FeatureTarget{Valence: 0.5, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}
	exact := domain.CatalogRecord{Valence: 0.5, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}

	assert.InDelta(t, 0, Distance(exact, target), 1e-12)

	// Monotonic: growing a single feature's absolute difference strictly
	// grows the distance.
	prev := Distance(exact, target)
	for _, v := range []float64{0.6, 0.7, 0.9} {
		r := exact
		r.Valence = v
		d := Distance(r, target)
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestDistance_ZeroFeatureIsARealValue(t *testing.T) {
	target := domain.FeatureTarget{Valence: 0.9, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}
	near := domain.CatalogRecord{Valence: 0.05, Energy: 0.5, Danceability: 0.5, Acousticness: 0.5, Tempo: 120}
	far := near
	far.Valence = 0

	// A valence of exactly 0.0 is farther from a 0.9 target than 0.05 is,
	// not a stand-in for a missing value.
	assert.Greater(t, Distance(far, target), Distance(near, target))

	// Same for tempo: 0 BPM ranks as 0 BPM.
	slowest := near
	slowest.Tempo = 0
	assert.Greater(t, Distance(slowest, target), Distance(near, target))
}

func TestRecommend_EmptyCatalogIsNotAnError(t *testing.T) {
	e := newTestEngine(t, nil)

	got := e.Recommend(domain.FeatureTarget{Valence: 0.5, Tempo: 120}, domain.FilterSet{}, 5)
	assert.Empty(t, got.Tracks)
}

func TestReload_SwapsSnapshot(t *testing.T) {
	src := &mutableSource{records: testCatalog()[:3]}
	e, err := NewEngine(context.Background(), src, discard())
	require.NoError(t, err)
	assert.Equal(t, 3, e.Size())

	src.records = testCatalog()
	require.NoError(t, e.Reload(context.Background()))
	assert.Equal(t, len(testCatalog()), e.Size())
}

type mutableSource struct {
	records []domain.CatalogRecord
}

func (s *mutableSource) Load(context.Context) ([]domain.CatalogRecord, error) {
	return s.records, nil
}
