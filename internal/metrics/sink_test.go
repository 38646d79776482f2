package metrics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

func sampleRecord(id string) domain.RequestMetrics {
	return domain.RequestMetrics{
		RequestID:         id,
		UserID:            "42",
		Timestamp:         "2026-08-28T12:00:00Z",
		AudioDurationSec:  3.5,
		AudioValid:        true,
		Transcript:        "включи грустный рок",
		TranscriptLength:  19,
		Emotion:           "sad",
		EmotionConfidence: 0.81,
		IntentGenres:      "rock",
		IntentLanguage:    "ru",
		IntentCount:       2,
		LLMSuccess:        true,
		TargetValence:     0.2,
		TracksFound:       5,
		TracksFromDataset: 5,
		Success:           true,
	}
}

func TestCollector_StepsAndFinalize(t *testing.T) {
	c := StartRequest("42")
	c.StartStep("stt")
	time.Sleep(5 * time.Millisecond)
	elapsed := c.EndStep("stt")
	assert.Greater(t, elapsed, 0.0)
	assert.Zero(t, c.EndStep("never-started"))

	c.Record().Emotion = "sad"
	rec := c.Finalize()
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, "sad", rec.Emotion)
	assert.Greater(t, rec.ProcessingTimeSec, 0.0)
	assert.True(t, strings.HasPrefix(rec.RequestID, "42_"))
}

func TestCSVSink_HeaderOnCreateThenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink := NewCSVSink(path)

	require.NoError(t, sink.Append(context.Background(), sampleRecord("r1")))
	require.NoError(t, sink.Append(context.Background(), sampleRecord("r2")))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "r2", rows[2][0])
	assert.Equal(t, "включи грустный рок", rows[1][7])
	assert.Equal(t, "true", rows[1][24], "success column")
}

func TestCSVSink_TruncatesTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink := NewCSVSink(path)

	rec := sampleRecord("r1")
	rec.Transcript = strings.Repeat("я", 300)
	require.NoError(t, sink.Append(context.Background(), rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(rows[1][7])))
}

func TestCSVSink_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink := NewCSVSink(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Append(context.Background(), sampleRecord("c"))
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 21, "no interleaved or lost rows")
}

func TestSQLiteSink_AppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Append(context.Background(), sampleRecord("r1")))

	var transcript string
	var success bool
	row := sink.db.QueryRow("SELECT transcript, success FROM request_metrics WHERE request_id = ?", "r1")
	require.NoError(t, row.Scan(&transcript, &success))
	assert.Equal(t, "включи грустный рок", transcript)
	assert.True(t, success)
}

func TestSQLiteSink_DuplicateRequestIDFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Append(context.Background(), sampleRecord("dup")))
	assert.Error(t, sink.Append(context.Background(), sampleRecord("dup")))
}
