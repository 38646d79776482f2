package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

// Per-feature ranking weights. Tempo differences are scaled by tempoScale
// before squaring to sit on the same footing as the 0-1 features.
var featureWeights = struct {
	valence, energy, danceability, acousticness, tempo float64
}{1.5, 1.2, 1.0, 0.8, 0.5}

const tempoScale = 140.0

// Filter names reported in PipelineResult.FiltersApplied.
const (
	FilterArtist    = "artist"
	FilterLanguage  = "language"
	FilterGenre     = "genre"
	FilterYearStart = "year_start"
	FilterYearEnd   = "year_end"
)

// index is one immutable catalog snapshot. Reload builds a new index and
// swaps the pointer; readers never observe a partially built one.
type index struct {
	records []domain.CatalogRecord
}

// Engine ranks catalog tracks against a feature target. Safe for
// unsynchronized concurrent reads; Reload swaps the snapshot atomically.
type Engine struct {
	source ports.CatalogSource
	log    *slog.Logger
	idx    atomic.Pointer[index]
}

// NewEngine loads the catalog once through the source. Startup fails only
// when the source cannot produce any records.
func NewEngine(ctx context.Context, source ports.CatalogSource, log *slog.Logger) (*Engine, error) {
	e := &Engine{source: source, log: log}
	if err := e.Reload(ctx); err != nil {
		return nil, fmt.Errorf("recommender: initial load: %w", err)
	}
	return e, nil
}

// Reload builds a fresh index from the source and swaps it in atomically.
func (e *Engine) Reload(ctx context.Context) error {
	records, err := e.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("recommender: reload: %w", err)
	}
	e.idx.Store(&index{records: records})
	e.log.Info("catalog index loaded", "tracks", len(records))
	return nil
}

// Size reports the number of records in the current snapshot.
func (e *Engine) Size() int {
	return len(e.idx.Load().records)
}

// Recommendation is the engine output: the ranked tracks plus the names of
// the filters that actually survived the relaxation cascade.
type Recommendation struct {
	Tracks         []domain.Track
	FiltersApplied []string
}

// Recommend returns at most topK tracks ordered by ascending weighted
// distance to the target. An empty result is a valid, non-error outcome.
func (e *Engine) Recommend(features domain.FeatureTarget, filters domain.FilterSet, topK int) Recommendation {
	if topK <= 0 {
		return Recommendation{}
	}

	all := e.idx.Load().records
	working := all
	var applied []string

	artistFound := false
	if filters.Artist != "" {
		if subset, tier := e.searchArtist(all, filters.Artist); len(subset) > 0 {
			// Artist intent overrides mood, genre and year: once the artist
			// subset exists it becomes the whole working set.
			working = subset
			artistFound = true
			applied = append(applied, FilterArtist)
			e.log.Info("artist match", "artist", filters.Artist, "tier", tier, "tracks", len(subset))
		} else {
			e.log.Warn("no tracks for artist, searching whole catalog", "artist", filters.Artist)
		}
	}

	if !artistFound {
		working, applied = e.applyCascade(working, filters, topK, applied)

		// Safety reset: with every filter applied the pool is still starved,
		// so restart from the full catalog keeping language alone.
		if len(working) < topK {
			e.log.Warn("too few tracks after filtering, resetting filters", "tracks", len(working))
			working = all
			applied = nil
			if filters.Language != "" && filters.Language != "other" {
				if byLang := filterLanguage(all, filters.Language); len(byLang) >= topK {
					working = byLang
					applied = []string{FilterLanguage}
				}
			}
		}
	}

	ranked := rankByDistance(working, features)
	return Recommendation{
		Tracks:         dedupeTopK(ranked, topK),
		FiltersApplied: applied,
	}
}

// applyCascade applies language, genre, year_start and year_end in that
// order; each filter sticks only while the surviving pool still holds topK
// candidates, otherwise it is silently skipped.
func (e *Engine) applyCascade(working []domain.CatalogRecord, filters domain.FilterSet, topK int, applied []string) ([]domain.CatalogRecord, []string) {
	if filters.Language != "" && filters.Language != "other" && filters.Language != "any" {
		if filtered := filterLanguage(working, filters.Language); len(filtered) >= topK {
			working = filtered
			applied = append(applied, FilterLanguage)
		}
	}

	if len(filters.Genres) > 0 {
		expanded := expandGenres(filters.Genres)
		filtered := working[:0:0]
		for _, r := range working {
			if hasAnyGenre(r.Genres, expanded) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) >= topK {
			working = filtered
			applied = append(applied, FilterGenre)
		}
	}

	if filters.YearStart > 0 {
		filtered := working[:0:0]
		for _, r := range working {
			if r.Year >= filters.YearStart {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) >= topK {
			working = filtered
			applied = append(applied, FilterYearStart)
		}
	}

	if filters.YearEnd > 0 {
		filtered := working[:0:0]
		for _, r := range working {
			if r.Year > 0 && r.Year <= filters.YearEnd {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) >= topK {
			working = filtered
			applied = append(applied, FilterYearEnd)
		}
	}

	return working, applied
}

// searchArtist runs the three-tier artist search: exact, then substring,
// then fuzzy. Each tier is tried only when the previous one found nothing.
func (e *Engine) searchArtist(records []domain.CatalogRecord, rawArtist string) ([]domain.CatalogRecord, string) {
	artist := ResolveAlias(rawArtist)
	if artist != rawArtist {
		e.log.Info("resolved artist alias", "query", rawArtist, "canonical", artist)
	}
	artistLower := strings.ToLower(strings.TrimSpace(artist))

	var exact []domain.CatalogRecord
	for _, r := range records {
		for _, a := range r.Artists {
			if strings.ToLower(a) == artistLower {
				exact = append(exact, r)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact, "exact"
	}

	var partial []domain.CatalogRecord
	for _, r := range records {
		for _, a := range r.Artists {
			if strings.Contains(strings.ToLower(a), artistLower) {
				partial = append(partial, r)
				break
			}
		}
	}
	if len(partial) > 0 {
		return partial, "substring"
	}

	var fuzzy []domain.CatalogRecord
	for _, r := range records {
		for _, a := range r.Artists {
			if FuzzyMatch(artistLower, strings.ToLower(a), fuzzyThreshold) {
				fuzzy = append(fuzzy, r)
				break
			}
		}
	}
	if len(fuzzy) > 0 {
		return fuzzy, "fuzzy"
	}

	return nil, ""
}

// Distance computes the weighted feature-space distance between a record and
// the target. Feature values are taken as-is: missing values are already
// defaulted at load time, and a genuine 0.0 is a real data point.
func Distance(r domain.CatalogRecord, target domain.FeatureTarget) float64 {
	sum := weighted(r.Valence, target.Valence, featureWeights.valence)
	sum += weighted(r.Energy, target.Energy, featureWeights.energy)
	sum += weighted(r.Danceability, target.Danceability, featureWeights.danceability)
	sum += weighted(r.Acousticness, target.Acousticness, featureWeights.acousticness)

	diff := (r.Tempo - target.Tempo) / tempoScale
	sum += featureWeights.tempo * diff * diff

	return math.Sqrt(sum)
}

func weighted(value, target, weight float64) float64 {
	diff := value - target
	return weight * diff * diff
}

func rankByDistance(records []domain.CatalogRecord, target domain.FeatureTarget) []domain.Track {
	tracks := make([]domain.Track, 0, len(records))
	for _, r := range records {
		artist := r.DisplayArtist()
		tracks = append(tracks, domain.Track{
			CatalogID:    r.CatalogID,
			Name:         r.Name,
			Artist:       artist,
			Year:         r.Year,
			Genres:       r.Genres,
			Language:     r.Language,
			Valence:      r.Valence,
			Energy:       r.Energy,
			Danceability: r.Danceability,
			Acousticness: r.Acousticness,
			Tempo:        r.Tempo,
			Distance:     Distance(r, target),
		})
	}

	// Stable keeps original catalog order for equal distances.
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Distance < tracks[j].Distance
	})
	return tracks
}

// dedupeTopK collapses tracks sharing a normalized name, first occurrence
// after sorting wins, and cuts the list to topK.
func dedupeTopK(tracks []domain.Track, topK int) []domain.Track {
	seen := make(map[string]struct{}, topK)
	out := make([]domain.Track, 0, topK)
	for _, t := range tracks {
		key := t.NameKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == topK {
			break
		}
	}
	return out
}

func filterLanguage(records []domain.CatalogRecord, language string) []domain.CatalogRecord {
	var out []domain.CatalogRecord
	for _, r := range records {
		if r.Language == language {
			out = append(out, r)
		}
	}
	return out
}

func hasAnyGenre(genres []string, wanted map[string]struct{}) bool {
	for _, g := range genres {
		if _, ok := wanted[normalizeTag(g)]; ok {
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
