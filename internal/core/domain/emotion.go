package domain

// EmotionProfile maps a voice emotion to the feature ranges its music
// should fall in. Ranges are inclusive; the deterministic fallback target
// is the midpoint of each range.
type EmotionProfile struct {
	Valence      [2]float64
	Energy       [2]float64
	Danceability [2]float64
	Tempo        [2]float64
	Description  string
}

// EmotionProfiles is the static emotion → feature-range table. Unknown
// emotions resolve to "neutral".
var EmotionProfiles = map[string]EmotionProfile{
	"happy": {
		Valence:      [2]float64{0.6, 0.9},
		Energy:       [2]float64{0.5, 0.8},
		Danceability: [2]float64{0.5, 0.8},
		Tempo:        [2]float64{100, 140},
		Description:  "веселая, позитивная",
	},
	"sad": {
		Valence:      [2]float64{0.1, 0.4},
		Energy:       [2]float64{0.2, 0.5},
		Danceability: [2]float64{0.2, 0.5},
		Tempo:        [2]float64{60, 100},
		Description:  "грустная, меланхоличная",
	},
	"angry": {
		Valence:      [2]float64{0.2, 0.5},
		Energy:       [2]float64{0.7, 1.0},
		Danceability: [2]float64{0.4, 0.7},
		Tempo:        [2]float64{120, 180},
		Description:  "агрессивная, мощная",
	},
	"neutral": {
		Valence:      [2]float64{0.4, 0.6},
		Energy:       [2]float64{0.4, 0.6},
		Danceability: [2]float64{0.4, 0.6},
		Tempo:        [2]float64{90, 120},
		Description:  "спокойная, нейтральная",
	},
	"energetic": {
		Valence:      [2]float64{0.5, 0.8},
		Energy:       [2]float64{0.7, 1.0},
		Danceability: [2]float64{0.6, 0.9},
		Tempo:        [2]float64{120, 160},
		Description:  "энергичная, драйвовая",
	},
	"calm": {
		Valence:      [2]float64{0.4, 0.7},
		Energy:       [2]float64{0.1, 0.4},
		Danceability: [2]float64{0.2, 0.5},
		Tempo:        [2]float64{60, 100},
		Description:  "спокойная, расслабляющая",
	},
	"anxious": {
		Valence:      [2]float64{0.2, 0.4},
		Energy:       [2]float64{0.5, 0.8},
		Danceability: [2]float64{0.3, 0.5},
		Tempo:        [2]float64{100, 140},
		Description:  "тревожная, напряженная",
	},
}

// ProfileFor resolves an emotion label to its profile, defaulting to neutral.
func ProfileFor(emotion string) EmotionProfile {
	if p, ok := EmotionProfiles[emotion]; ok {
		return p
	}
	return EmotionProfiles["neutral"]
}

func mid(r [2]float64) float64 { return (r[0] + r[1]) / 2 }

// FallbackTarget derives a deterministic feature target from the emotion
// profile table when parameter inference is unavailable.
func FallbackTarget(emotion string) FeatureTarget {
	p := ProfileFor(emotion)
	return FeatureTarget{
		Valence:      mid(p.Valence),
		Energy:       mid(p.Energy),
		Danceability: mid(p.Danceability),
		Acousticness: 0.3,
		Tempo:        mid(p.Tempo),
	}
}

// MoodSearchTerm maps a voice emotion to the term used for external
// mood search. Empty means no mood query can be built for that emotion.
var MoodSearchTerm = map[string]string{
	"happy":    "happy",
	"sad":      "sad",
	"angry":    "energetic",
	"neutral":  "calm",
	"fear":     "calm",
	"anxious":  "calm",
	"disgust":  "sad",
	"surprise": "energetic",
}
