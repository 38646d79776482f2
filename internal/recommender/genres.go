package recommender

// genreExpansion widens a requested genre tag into the sub-genre labels the
// catalog actually carries. Unknown tags pass through unchanged.
var genreExpansion = map[string][]string{
	"pop":          {"pop", "dance pop", "russian pop", "classic russian pop"},
	"dance":        {"dance", "dance pop", "edm", "russian dance pop"},
	"electronic":   {"electronic", "edm", "house", "techno", "trance", "russian electronic"},
	"indie":        {"indie", "indie pop", "russian indie", "indie rock"},
	"hip_hop":      {"hip hop", "russian hip hop", "southern hip hop"},
	"rap":          {"rap", "pop rap", "russian hip hop", "trap"},
	"trap":         {"trap", "russian trap"},
	"rnb":          {"r&b", "urban contemporary"},
	"rock":         {"rock", "russian rock", "classic russian rock", "modern rock", "hard rock"},
	"metal":        {"metal", "russian metal", "russian folk metal", "russian black metal"},
	"punk":         {"punk", "russian punk", "russian post-punk"},
	"alternative":  {"alternative", "russian alternative"},
	"classical":    {"classical", "russian classical piano", "symphony"},
	"instrumental": {"instrumental", "piano", "ambient"},
	"ambient":      {"ambient", "chill"},
	"jazz":         {"jazz"},
	"folk":         {"folk", "russian folk", "russian folk metal"},
	"latin":        {"latin", "reggaeton", "tropical"},
	"soundtrack":   {"soundtrack", "score"},
	"blues":        {"blues"},
}

func expandGenres(filters []string) map[string]struct{} {
	expanded := make(map[string]struct{})
	for _, g := range filters {
		key := normalizeTag(g)
		if subs, ok := genreExpansion[key]; ok {
			for _, s := range subs {
				expanded[s] = struct{}{}
			}
		} else {
			expanded[key] = struct{}{}
		}
	}
	return expanded
}
