package domain

// UserIntent is the structured signal extracted from a single transcript.
// It is derived purely from the transcript text plus the externally supplied
// emotion fields and is never mutated after extraction.
type UserIntent struct {
	Transcript   string   `json:"transcript"`
	AudioEmotion string   `json:"audio_emotion,omitempty"`
	EmotionScore float64  `json:"audio_emotion_confidence,omitempty"`
	Language     string   `json:"language,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	MoodKeywords []string `json:"mood_keywords,omitempty"`
	PlayIntent   bool     `json:"play_intent"`
	Artist       string   `json:"artist,omitempty"`
	FreeKeywords []string `json:"keywords,omitempty"`
}

// HasPreferences reports whether the transcript carried any explicit music
// preference beyond raw emotion.
func (u UserIntent) HasPreferences() bool {
	return u.Language != "" || len(u.Genres) > 0 || len(u.MoodKeywords) > 0 || u.Artist != ""
}

// SignalCount counts distinct preference signals, recorded in metrics.
func (u UserIntent) SignalCount() int {
	n := len(u.Genres)
	if u.Language != "" {
		n++
	}
	if u.Artist != "" {
		n++
	}
	return n
}
