// Package intent derives structured music preferences from free transcript
// text via keyword-set matching. Extraction is a total function: any string
// input yields a valid UserIntent, empty text yields an empty one.
package intent

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

const maxFreeKeywords = 5

// Extractor applies the static keyword tables to transcript text.
// It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor constructs an Extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Tokenize splits text into lowercase word tokens. A token is a maximal run
// of letters and digits, matching the original \w+ semantics.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Genres returns every genre tag with at least one trigger that is a prefix
// of, or contained in, a token. All matching categories accumulate.
func (e *Extractor) Genres(text string) []string {
	tokens := Tokenize(text)
	found := make(map[string]struct{})

	for genre, triggers := range genreKeywords {
		for _, token := range tokens {
			for _, kw := range triggers {
				if strings.HasPrefix(token, kw) || strings.Contains(token, kw) {
					found[genre] = struct{}{}
					break
				}
			}
		}
	}

	genres := make([]string, 0, len(found))
	for g := range found {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// Language returns the first tag whose trigger appears as a substring of the
// full lowercase text, in priority order instrumental, ru, en. At most one
// language is ever extracted.
func (e *Extractor) Language(text string) string {
	lower := strings.ToLower(text)
	for _, lang := range languagePriority {
		for _, kw := range languageKeywords[lang] {
			if strings.Contains(lower, kw) {
				return lang
			}
		}
	}
	return ""
}

// Moods accumulates every mood tag triggered by a substring of the text.
func (e *Extractor) Moods(text string) []string {
	lower := strings.ToLower(text)
	var moods []string
	for _, mood := range moodOrder {
		for _, kw := range moodKeywords[mood] {
			if strings.Contains(lower, kw) {
				moods = append(moods, mood)
				break
			}
		}
	}
	return moods
}

// PlayIntent reports whether any token is a known playback verb.
func (e *Extractor) PlayIntent(text string) bool {
	for _, token := range Tokenize(text) {
		if _, ok := playKeywords[token]; ok {
			return true
		}
	}
	return false
}

// FreeKeywords returns the first maxFreeKeywords non-stopword tokens of
// length >= 3, in transcript order.
func (e *Extractor) FreeKeywords(text string) []string {
	var keywords []string
	for _, token := range Tokenize(text) {
		if len([]rune(token)) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxFreeKeywords {
			break
		}
	}
	return keywords
}

// Extract builds the full UserIntent from transcript text and the externally
// supplied emotion fields. Empty or whitespace-only text preserves the
// emotion fields and leaves every derived field empty.
func (e *Extractor) Extract(text, audioEmotion string, emotionConfidence float64) domain.UserIntent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.UserIntent{
			AudioEmotion: audioEmotion,
			EmotionScore: emotionConfidence,
		}
	}

	return domain.UserIntent{
		Transcript:   trimmed,
		AudioEmotion: audioEmotion,
		EmotionScore: emotionConfidence,
		Language:     e.Language(text),
		Genres:       e.Genres(text),
		MoodKeywords: e.Moods(text),
		PlayIntent:   e.PlayIntent(text),
		FreeKeywords: e.FreeKeywords(text),
	}
}

// moodOrder keeps Moods deterministic across runs; map iteration is not.
var moodOrder = []string{"happy", "sad", "energetic", "calm", "angry", "romantic", "nostalgic", "party"}
