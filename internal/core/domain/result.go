package domain

// Audio analysis statuses, trusted verbatim from the upstream analyzer.
const (
	AudioStatusOK      = "ok"
	AudioStatusInvalid = "invalid_audio"
	AudioStatusError   = "error"
)

// Audio rejection reasons the pipeline branches on.
const (
	ReasonSilence            = "silence"
	ReasonTooShort           = "too_short"
	ReasonTooNoisy           = "too_noisy"
	ReasonTranscriptTooShort = "transcript_too_short"
	ReasonNoAudio            = "no_audio_provided"
)

// AudioAnalysis is the upstream speech/emotion result the pipeline consumes.
type AudioAnalysis struct {
	Status       string  `json:"status"`
	Reason       string  `json:"reason,omitempty"`
	Transcript   string  `json:"transcript,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScore float64 `json:"emotion_confidence,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
}

// MusicAnalysis is the parameter-inference output: a feature target plus
// filters, validated against a strict schema at the client boundary.
type MusicAnalysis struct {
	MoodInterpretation string        `json:"mood_interpretation,omitempty"`
	Features           FeatureTarget `json:"features"`
	Filters            FilterSet     `json:"filters"`
	Explanation        string        `json:"explanation,omitempty"`
}

// PipelineResult is the terminal outcome of one request. It is created once
// by the orchestrator and never mutated afterwards. A failed result carries
// ErrorMessage and no tracks; a successful one always carries ResponseText.
type PipelineResult struct {
	Success            bool             `json:"success"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	ResponseText       string           `json:"response_text,omitempty"`
	Tracks             []ValidatedTrack `json:"tracks"`
	Transcript         string           `json:"transcript,omitempty"`
	AudioEmotion       string           `json:"audio_emotion,omitempty"`
	Intent             *UserIntent      `json:"intent,omitempty"`
	MoodInterpretation string           `json:"mood_interpretation,omitempty"`
	Features           *FeatureTarget   `json:"features,omitempty"`
	Filters            *FilterSet       `json:"filters,omitempty"`
	FiltersApplied     []string         `json:"filters_applied,omitempty"`
}
