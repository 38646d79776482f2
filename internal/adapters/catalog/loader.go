// Package catalog loads the tabular track catalog into memory. List-encoded
// columns are parsed once here, never per query.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
	"github.com/ewilliams-labs/moodtune/internal/recommender"
)

// ErrNoCatalog is returned when neither the primary file nor the fallback
// snapshot exists. This is the only load error that should abort startup.
var ErrNoCatalog = errors.New("catalog: no catalog file found")

// Loader reads the catalog CSV, preferring the primary path and falling back
// to a known-good snapshot.
type Loader struct {
	primary  string
	fallback string
	log      *slog.Logger
}

var _ ports.CatalogSource = (*Loader)(nil)

// NewLoader constructs a Loader over the two candidate paths.
func NewLoader(primary, fallback string, log *slog.Logger) *Loader {
	return &Loader{primary: primary, fallback: fallback, log: log}
}

// Load reads the whole catalog into memory.
func (l *Loader) Load(ctx context.Context) ([]domain.CatalogRecord, error) {
	path := l.primary
	if _, err := os.Stat(path); err != nil {
		path = l.fallback
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: tried %s and %s", ErrNoCatalog, l.primary, l.fallback)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	l.log.Info("loading catalog", "path", path)
	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	l.log.Info("catalog loaded", "tracks", len(records))
	return records, nil
}

// Parse reads catalog rows from r. The first row is the header; columns are
// located by name so column order in the source file does not matter.
func Parse(r io.Reader) ([]domain.CatalogRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// A UTF-8 BOM on the first column name would break lookup.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New("missing required column: name")
	}

	var out []domain.CatalogRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := get("name")
		if name == "" {
			continue
		}

		artists := parseListField(firstNonEmpty(get("artist_clean"), get("artist"), get("artists")))
		language := strings.ToLower(get("language"))
		if language == "" || language == "nan" {
			language = "other"
		}

		rec := domain.CatalogRecord{
			CatalogID:    firstNonEmpty(get("spotify_id"), get("catalog_id"), get("id")),
			Name:         name,
			Artists:      artists,
			Year:         parseYear(get("year"), get("release_date")),
			Genres:       parseGenres(get("genres")),
			Language:     language,
			Valence:      parseFeature(get("valence"), 0.5),
			Energy:       parseFeature(get("energy"), 0.5),
			Danceability: parseFeature(get("danceability"), 0.5),
			Acousticness: parseFeature(get("acousticness"), 0.5),
			Tempo:        parseFeature(get("tempo"), 120),
		}
		if len(rec.Artists) > 0 {
			rec.ArtistNorm = recommender.NormalizeArtist(rec.Artists[0])
		}
		out = append(out, rec)
	}

	return out, nil
}

// parseListField handles both scalar artist columns and Python-style list
// literals such as ['Сплин'] or ["A", "B"].
func parseListField(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return nil
	}
	if !strings.HasPrefix(raw, "[") {
		return []string{raw}
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	parts := strings.Split(inner, ",")
	var out []string
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseGenres(raw string) []string {
	parsed := parseListField(raw)
	for i, g := range parsed {
		parsed[i] = strings.ToLower(g)
	}
	return parsed
}

func parseFeature(raw string, def float64) float64 {
	if raw == "" || strings.EqualFold(raw, "nan") {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// parseYear prefers the year column, then the leading year of release_date.
func parseYear(year, releaseDate string) int {
	if year != "" && !strings.EqualFold(year, "nan") {
		// Years sometimes arrive as floats ("2005.0") from upstream cleaning.
		if f, err := strconv.ParseFloat(year, 64); err == nil && f > 0 {
			return int(f)
		}
	}
	if len(releaseDate) >= 4 {
		if y, err := strconv.Atoi(releaseDate[:4]); err == nil {
			return y
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" && !strings.EqualFold(v, "nan") {
			return v
		}
	}
	return ""
}
