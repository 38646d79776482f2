// Package recommender holds the in-memory catalog index and ranks tracks by
// weighted feature-space distance, with fuzzy artist resolution tolerant of
// speech-recognition noise and transliteration variants.
package recommender

import (
	"strings"
	"unicode"
)

// artistAliases maps canonical artist keys to known alias spellings, raw and
// transliterated, as they come out of speech recognition.
var artistAliases = map[string][]string{
	"monetochka":     {"монеточка", "мониточка", "монетка", "monetka", "monetochka"},
	"og buda":        {"og buda", "og booda", "огбуда", "оджибуда", "о.г.буда", "ogbuda"},
	"scriptonit":     {"скриптонит", "скрипт", "scriptonite", "скриптонайт"},
	"oxxxymiron":     {"оксимирон", "окси", "oxxxy", "oxymiron", "оксимир"},
	"face":           {"фейс", "фэйс"},
	"morgenshtern":   {"моргенштерн", "морген", "morgenstern"},
	"kizaru":         {"кизару", "kizary"},
	"pharaoh":        {"фараон", "фараох", "faraon"},
	"lsp":            {"лсп", "l.s.p"},
	"miyagi":         {"мияги", "miyagi"},
	"bumble beezy":   {"бамбл бизи", "bumble", "бамблби"},
	"big baby tape":  {"биг бейби тейп", "bbt", "bigbabytape"},
	"bushido zho":    {"бушидо жо", "bushido"},
	"mayot":          {"майот", "mayot"},
	"seemee":         {"сими", "simi", "seemee"},
	"104":            {"104", "сто четыре"},
	"obladaet":       {"обладает", "obladaet"},
	"markul":         {"маркул", "markul"},
	"feduk":          {"федук", "feduk"},
	"gone.fludd":     {"гон флад", "гонфлад", "gone fludd", "gonefludd"},
	"thomas mraz":    {"томас мраз", "mraz"},
	"cream soda":     {"крем сода", "creamsoda"},
	"три дня дождя":  {"три дня дождя", "3 дня дождя"},
	"макс корж":      {"макс корж", "корж", "maks korzh"},
	"хлеб":           {"хлеб", "hleb"},
	"кис-кис":        {"кис-кис", "кискис", "kis kis"},
	"пошлая молли":   {"пошлая молли", "molly"},
}

// aliasOrder fixes iteration order so the first matching canonical key wins
// deterministically.
var aliasOrder = []string{
	"monetochka", "og buda", "scriptonit", "oxxxymiron", "face", "morgenshtern",
	"kizaru", "pharaoh", "lsp", "miyagi", "bumble beezy", "big baby tape",
	"bushido zho", "mayot", "seemee", "104", "obladaet", "markul", "feduk",
	"gone.fludd", "thomas mraz", "cream soda", "три дня дождя", "макс корж",
	"хлеб", "кис-кис", "пошлая молли",
}

var cyrillicTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// digraphCollapse reduces transliteration variance after the Cyrillic pass.
// Longer patterns first so "dzh" wins over "dj".
var digraphCollapse = [][2]string{
	{"dzh", "j"},
	{"oo", "u"},
	{"uu", "u"},
	{"ii", "i"},
	{"ee", "e"},
	{"aa", "a"},
	{"dj", "j"},
}

const (
	fuzzyThreshold  = 0.7
	aliasEditBudget = 2
)

// NormalizeArtist lowercases, strips punctuation and whitespace,
// transliterates Cyrillic to Latin and collapses doubled-letter and digraph
// patterns, producing the canonical comparison form of an artist name.
func NormalizeArtist(name string) string {
	if name == "" {
		return ""
	}

	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r == '.' || r == '-' || r == '\'' || r == '"' || r == ',' || unicode.IsSpace(r):
			// separators and punctuation collapse to nothing
		default:
			if lat, ok := cyrillicTranslit[r]; ok {
				b.WriteString(lat)
			} else {
				b.WriteRune(r)
			}
		}
	}

	out := b.String()
	for _, pair := range digraphCollapse {
		out = strings.ReplaceAll(out, pair[0], pair[1])
	}
	return out
}

// Levenshtein computes the classic dynamic-programming edit distance.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}

// ResolveAlias maps any known alias spelling to its canonical artist name.
// A query matches when the normalized forms are equal, the raw lowercase
// forms are equal, or the normalized edit distance is within the budget.
// Unmatched queries are returned unchanged.
func ResolveAlias(query string) string {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryNorm := NormalizeArtist(queryLower)

	for _, canonical := range aliasOrder {
		for _, alias := range artistAliases[canonical] {
			aliasNorm := NormalizeArtist(alias)
			if queryNorm == aliasNorm || queryLower == strings.ToLower(alias) {
				return canonical
			}
			if Levenshtein(queryNorm, aliasNorm) <= aliasEditBudget {
				return canonical
			}
		}
	}

	return query
}

// FuzzyMatch reports whether two artist names refer to the same artist:
// equal normalized forms, one containing the other, or length-normalized
// edit similarity at or above the threshold.
func FuzzyMatch(query, candidate string, threshold float64) bool {
	qNorm := NormalizeArtist(query)
	cNorm := NormalizeArtist(candidate)

	if qNorm == "" || cNorm == "" {
		return false
	}
	if qNorm == cNorm {
		return true
	}
	if strings.Contains(cNorm, qNorm) || strings.Contains(qNorm, cNorm) {
		return true
	}

	maxLen := len([]rune(qNorm))
	if l := len([]rune(cNorm)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return false
	}

	similarity := 1 - float64(Levenshtein(qNorm, cNorm))/float64(maxLen)
	return similarity >= threshold
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
