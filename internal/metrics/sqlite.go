package metrics

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

// SQLiteSink persists request records to a local SQLite database. The
// database/sql pool serializes access; no extra locking is needed.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens the database and runs the schema migration.
func NewSQLiteSink(storagePath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return sink, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) Append(ctx context.Context, rec domain.RequestMetrics) error {
	query := `
		INSERT INTO request_metrics (
			request_id, user_id, timestamp,
			audio_duration_sec, processing_time_sec,
			audio_valid, validation_error,
			transcript, transcript_length, stt_time_sec,
			emotion, emotion_confidence,
			intents_genre, intents_language, intents_count,
			llm_success, llm_time_sec,
			target_valence, target_energy, target_danceability, target_tempo,
			tracks_found, tracks_from_dataset, tracks_from_external,
			success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(
		ctx,
		query,
		rec.RequestID, rec.UserID, rec.Timestamp,
		rec.AudioDurationSec, rec.ProcessingTimeSec,
		rec.AudioValid, rec.ValidationError,
		truncate(rec.Transcript, maxTranscriptColumn), rec.TranscriptLength, rec.STTTimeSec,
		rec.Emotion, rec.EmotionConfidence,
		rec.IntentGenres, rec.IntentLanguage, rec.IntentCount,
		rec.LLMSuccess, rec.LLMTimeSec,
		rec.TargetValence, rec.TargetEnergy, rec.TargetDanceability, rec.TargetTempo,
		rec.TracksFound, rec.TracksFromDataset, rec.TracksFromExternal,
		rec.Success, rec.Error,
	); err != nil {
		return fmt.Errorf("failed to save metrics record %s: %w", rec.RequestID, err)
	}
	return nil
}

func (s *SQLiteSink) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS request_metrics (
		request_id TEXT PRIMARY KEY,
		user_id TEXT,
		timestamp TEXT,
		audio_duration_sec REAL,
		processing_time_sec REAL,
		audio_valid INTEGER,
		validation_error TEXT,
		transcript TEXT,
		transcript_length INTEGER,
		stt_time_sec REAL,
		emotion TEXT,
		emotion_confidence REAL,
		intents_genre TEXT,
		intents_language TEXT,
		intents_count INTEGER,
		llm_success INTEGER,
		llm_time_sec REAL,
		target_valence REAL,
		target_energy REAL,
		target_danceability REAL,
		target_tempo REAL,
		tracks_found INTEGER,
		tracks_from_dataset INTEGER,
		tracks_from_external INTEGER,
		success INTEGER,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}
