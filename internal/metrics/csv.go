package metrics

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

// csvHeader defines the column order; Append writes rows in the same order.
var csvHeader = []string{
	"request_id", "user_id", "timestamp",
	"audio_duration_sec", "processing_time_sec",
	"audio_valid", "validation_error",
	"transcript", "transcript_length", "stt_time_sec",
	"emotion", "emotion_confidence",
	"intents_genre", "intents_language", "intents_count",
	"llm_success", "llm_time_sec",
	"target_valence", "target_energy", "target_danceability", "target_tempo",
	"tracks_found", "tracks_from_dataset", "tracks_from_external",
	"success", "error",
}

const maxTranscriptColumn = 200

// CSVSink appends request records to a single CSV file, writing the header
// when it creates the file. A mutex serializes concurrent writers.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Append(_ context.Context, rec domain.RequestMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write metrics header: %w", err)
		}
	}
	if err := w.Write(csvRow(rec)); err != nil {
		return fmt.Errorf("write metrics row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func csvRow(rec domain.RequestMetrics) []string {
	return []string{
		rec.RequestID, rec.UserID, rec.Timestamp,
		formatFloat(rec.AudioDurationSec), formatFloat(rec.ProcessingTimeSec),
		strconv.FormatBool(rec.AudioValid), rec.ValidationError,
		truncate(rec.Transcript, maxTranscriptColumn), strconv.Itoa(rec.TranscriptLength), formatFloat(rec.STTTimeSec),
		rec.Emotion, formatFloat(rec.EmotionConfidence),
		rec.IntentGenres, rec.IntentLanguage, strconv.Itoa(rec.IntentCount),
		strconv.FormatBool(rec.LLMSuccess), formatFloat(rec.LLMTimeSec),
		formatFloat(rec.TargetValence), formatFloat(rec.TargetEnergy), formatFloat(rec.TargetDanceability), formatFloat(rec.TargetTempo),
		strconv.Itoa(rec.TracksFound), strconv.Itoa(rec.TracksFromDataset), strconv.Itoa(rec.TracksFromExternal),
		strconv.FormatBool(rec.Success), rec.Error,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
