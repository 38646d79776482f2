package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArtist(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cyrillic transliteration", "Оксимирон", "oksimiron"},
		{"strips punctuation and case", "O.G. Buda", "ogbuda"},
		{"double letter collapse", "OG Booda", "ogbuda"},
		{"dzh digraph", "Дживан", "jivan"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeArtist(tc.in))
		})
	}
}

func TestResolveAlias_TransliterationRoundTrip(t *testing.T) {
	// Both the Cyrillic spelling and the stylized Latin one must land on the
	// same canonical key.
	assert.Equal(t, "oxxxymiron", ResolveAlias("Оксимирон"))
	assert.Equal(t, "oxxxymiron", ResolveAlias("oxxxymiron"))
	assert.Equal(t, "og buda", ResolveAlias("О.Г.Буда"))
	assert.Equal(t, "monetochka", ResolveAlias("монетка"))
}

func TestResolveAlias_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Rammstein", ResolveAlias("Rammstein"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("abc", "abc"))
	assert.Equal(t, 1, Levenshtein("abc", "abd"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 2, Levenshtein("kitten", "kiten1"))
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      bool
	}{
		{"close after transliteration", "Скриптонит", "scriptonit", true},
		{"substring containment", "окси", "oxxxymiron", false},
		{"close spelling", "morgenstern", "morgenshtern", true},
		{"unrelated", "monetochka", "scriptonit", false},
		{"empty query", "", "scriptonit", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FuzzyMatch(tc.query, tc.candidate, fuzzyThreshold))
		})
	}
}
