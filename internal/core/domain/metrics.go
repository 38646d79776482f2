package domain

// RequestMetrics is the append-only record written once per request.
// Fields are filled in as the pipeline advances and never updated after
// the record is handed to a sink.
type RequestMetrics struct {
	RequestID string
	UserID    string
	Timestamp string

	AudioDurationSec  float64
	ProcessingTimeSec float64

	AudioValid      bool
	ValidationError string

	Transcript       string
	TranscriptLength int
	STTTimeSec       float64

	Emotion           string
	EmotionConfidence float64

	IntentGenres   string
	IntentLanguage string
	IntentCount    int

	LLMSuccess bool
	LLMTimeSec float64

	TargetValence      float64
	TargetEnergy       float64
	TargetDanceability float64
	TargetTempo        float64

	TracksFound        int
	TracksFromDataset  int
	TracksFromExternal int

	Success bool
	Error   string
}
