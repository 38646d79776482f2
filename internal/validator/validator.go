package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

// artistBlocklist holds placeholder artist values that catalog rows carry
// when the source data had none.
var artistBlocklist = map[string]struct{}{
	"":        {},
	"unknown": {},
	"nan":     {},
	"none":    {},
}

const unknownArtist = "Unknown Artist"

// Validator reconciles recommended tracks against the external catalog and
// re-derives the per-track language from the name and artist scripts.
type Validator struct {
	catalog ports.ExternalCatalogProvider
	log     *slog.Logger
}

func New(catalog ports.ExternalCatalogProvider, log *slog.Logger) *Validator {
	return &Validator{catalog: catalog, log: log}
}

// ValidateAndEnrich processes every track. External verification hits the
// catalog API and is capped to the first maxExternalCalls tracks; language
// re-derivation, artist placeholder substitution and URL backfill run for
// all of them.
func (v *Validator) ValidateAndEnrich(ctx context.Context, tracks []domain.Track, maxExternalCalls int) []domain.ValidatedTrack {
	validated := make([]domain.ValidatedTrack, 0, len(tracks))
	for i, t := range tracks {
		verify := i < maxExternalCalls
		validated = append(validated, v.validate(ctx, t, verify))
	}
	return validated
}

func (v *Validator) validate(ctx context.Context, t domain.Track, verify bool) domain.ValidatedTrack {
	vt := domain.ValidatedTrack{Track: t, VerificationSource: domain.SourceDataset}

	if verify && t.CatalogID != "" && v.catalog.IsAvailable() {
		if v.verifyExternal(ctx, &vt) {
			vt.IsVerified = true
			vt.VerificationSource = domain.SourceExternal
		}
	}

	vt.Language = deriveLanguage(vt.Name, vt.Artist, vt.Language)

	if _, blocked := artistBlocklist[strings.ToLower(strings.TrimSpace(vt.Artist))]; blocked {
		vt.Artist = unknownArtist
	}

	if vt.URL == "" {
		vt.URL = vt.ExternalURL()
	}
	return vt
}

// verifyExternal overrides local name, artist, url and, when present,
// genres and year with the external catalog's record.
func (v *Validator) verifyExternal(ctx context.Context, vt *domain.ValidatedTrack) bool {
	info, ok := v.catalog.GetTrackInfo(ctx, vt.CatalogID)
	if !ok {
		return false
	}

	vt.Name = info.Name
	vt.Artist = info.Artist
	vt.URL = info.URL
	if year, ok := parseReleaseYear(info.ReleaseDate); ok {
		vt.Year = year
	}

	if genres := v.lookupGenres(ctx, info); len(genres) > 0 {
		vt.Genres = genres
	}
	return true
}

// lookupGenres resolves the track's lead artist via search, then pulls that
// artist's genre tags. Any miss along the way leaves the local genres alone.
func (v *Validator) lookupGenres(ctx context.Context, info ports.ExternalTrackInfo) []string {
	results := v.catalog.SearchTracks(ctx, fmt.Sprintf("%s %s", info.Artist, info.Name), 1, "")
	if len(results) == 0 || len(results[0].ArtistIDs) == 0 {
		return nil
	}

	genresByArtist := v.catalog.GetArtistsGenresBatch(ctx, results[0].ArtistIDs[:1])
	var genres []string
	for _, g := range genresByArtist {
		genres = append(genres, g...)
	}
	return genres
}

func parseReleaseYear(releaseDate string) (int, bool) {
	if len(releaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// deriveLanguage classifies a track by the script of its name and artist.
// Majority Cyrillic means "ru", strong Latin majority means "en". When the
// ratio test is inconclusive, any Cyrillic content still forces "ru" and
// purely Latin text without an explicit ru/instrumental label becomes "en".
func deriveLanguage(name, artist, current string) string {
	combined := name + " " + artist

	switch classifyScript(combined) {
	case "ru":
		return "ru"
	case "en":
		return "en"
	}

	if containsCyrillic(name) || containsCyrillic(artist) {
		return "ru"
	}
	if current != "en" && current != "instrumental" {
		return "en"
	}
	return current
}

func classifyScript(text string) string {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			latin++
		}
	}
	total := cyrillic + latin
	if total == 0 {
		return "other"
	}
	if float64(cyrillic)/float64(total) > 0.5 {
		return "ru"
	}
	if float64(latin)/float64(total) > 0.8 {
		return "en"
	}
	return "other"
}

func containsCyrillic(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
