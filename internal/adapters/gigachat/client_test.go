package gigachat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
)

type fakeAPI struct {
	calls   atomic.Int32
	content string
	err     error
	failN   int32
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	n := f.calls.Add(1)
	if f.err != nil && (f.failN == 0 || n <= f.failN) {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestClient(api completionAPI) *Client {
	return &Client{
		api:        api,
		model:      "test",
		retries:    3,
		retryDelay: time.Millisecond,
		timeout:    time.Second,
		sem:        semaphore.NewWeighted(2),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

const validAnalysis = `{
	"mood_interpretation": "грустное настроение",
	"features": {"valence": 0.2, "energy": 0.3, "danceability": 0.3, "acousticness": 0.5, "tempo": 80},
	"filters": {"genres": ["rock"], "language": "ru", "year_start": 2005, "year_end": 2005, "artist": null},
	"explanation": "ok"
}`

func TestAnalyze_ParsesValidOutput(t *testing.T) {
	api := &fakeAPI{content: "```json\n" + validAnalysis + "\n```"}
	c := newTestClient(api)

	got, err := c.Analyze(context.Background(), domain.UserIntent{Transcript: "грустный рок"})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, got.Features.Valence, 1e-9)
	assert.Equal(t, []string{"rock"}, got.Filters.Genres)
	assert.Equal(t, "ru", got.Filters.Language)
	assert.Equal(t, 2005, got.Filters.YearStart)
	assert.Equal(t, "грустное настроение", got.MoodInterpretation)
}

func TestAnalyze_SchemaMismatchIsError(t *testing.T) {
	api := &fakeAPI{content: `{"filters": {"language": "ru"}}`}
	c := newTestClient(api)

	_, err := c.Analyze(context.Background(), domain.UserIntent{})
	assert.Error(t, err, "missing features object must be rejected")
}

func TestAnalyze_UnparsableIsError(t *testing.T) {
	api := &fakeAPI{content: "sure! here are the parameters you asked for"}
	c := newTestClient(api)

	_, err := c.Analyze(context.Background(), domain.UserIntent{})
	assert.Error(t, err)
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	api := &fakeAPI{content: validAnalysis, err: errors.New("transient"), failN: 2}
	c := newTestClient(api)

	_, err := c.Analyze(context.Background(), domain.UserIntent{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), api.calls.Load())
}

func TestComplete_LastErrorAfterAllAttempts(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	c := newTestClient(api)

	_, err := c.Analyze(context.Background(), domain.UserIntent{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, int32(3), api.calls.Load())
}

func TestGenerateResponse_FallbackOnFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	c := newTestClient(api)

	got := c.GenerateResponse(context.Background(), nil, domain.UserIntent{AudioEmotion: "sad"}, "")
	assert.Equal(t, fallbackResponses["sad"], got)
}

func TestGenerateClarification_FallbackOnFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	c := newTestClient(api)

	got := c.GenerateClarification(context.Background(), domain.UserIntent{})
	assert.Equal(t, fallbackClarification, got)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
