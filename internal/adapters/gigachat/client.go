// Package gigachat adapts the OpenAI-compatible GigaChat endpoint to the
// parameter-inference port. The adapter owns the downstream rate-limit
// policy: a process-wide permit bounds concurrent calls, and each call is
// retried a fixed number of times with a fixed delay.
package gigachat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

const (
	defaultModel         = "GigaChat-2-Max"
	defaultRetries       = 3
	defaultRetryDelay    = 2 * time.Second
	defaultTimeout       = 60 * time.Second
	defaultMaxConcurrent = 5
	temperature          = 0.2
)

// Config carries credentials and the retry/concurrency policy.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Retries       int
	RetryDelay    time.Duration
	Timeout       time.Duration
	MaxConcurrent int64
}

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements ports.InferenceProvider.
type Client struct {
	api        completionAPI
	model      string
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	sem        *semaphore.Weighted
	log        *slog.Logger
}

var _ ports.InferenceProvider = (*Client)(nil)

// NewClient constructs the inference client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrent := cfg.MaxConcurrent
	if concurrent <= 0 {
		concurrent = defaultMaxConcurrent
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		model:      model,
		retries:    retries,
		retryDelay: delay,
		timeout:    timeout,
		sem:        semaphore.NewWeighted(concurrent),
		log:        log,
	}
}

// Analyze maps the intent to a feature target and filters. A failure after
// all retries, or output that does not satisfy the schema, is returned as an
// error so the caller can degrade to the deterministic fallback.
func (c *Client) Analyze(ctx context.Context, intent domain.UserIntent) (domain.MusicAnalysis, error) {
	content, err := c.complete(ctx, buildAnalysisPrompt(intent))
	if err != nil {
		return domain.MusicAnalysis{}, fmt.Errorf("gigachat: analyze: %w", err)
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		return domain.MusicAnalysis{}, fmt.Errorf("gigachat: analyze: %w", err)
	}
	return analysis, nil
}

// GenerateResponse produces the user-facing summary; on any failure it falls
// back to a fixed per-emotion string and never returns an error.
func (c *Client) GenerateResponse(ctx context.Context, tracks []domain.ValidatedTrack, intent domain.UserIntent, mood string) string {
	content, err := c.complete(ctx, buildResponsePrompt(tracks, intent, mood))
	if err != nil {
		c.log.Warn("response generation failed, using fallback", "error", err)
		return fallbackResponse(intent.AudioEmotion)
	}
	return strings.TrimSpace(content)
}

// GenerateClarification asks the user for more detail; fixed fallback on
// failure.
func (c *Client) GenerateClarification(ctx context.Context, intent domain.UserIntent) string {
	content, err := c.complete(ctx, buildClarificationPrompt(intent))
	if err != nil {
		c.log.Warn("clarification generation failed, using fallback", "error", err)
		return fallbackClarification
	}
	return strings.TrimSpace(content)
}

// complete runs one chat completion under the concurrency permit and the
// fixed retry policy. The permit covers a single attempt at a time and is
// released even when the attempt fails or the context is canceled; the
// timeout at this boundary is the pipeline's only cancellation point.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		content, err := c.attempt(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err
		c.log.Warn("inference attempt failed", "attempt", attempt, "retries", c.retries, "error", err)

		if attempt < c.retries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}

	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAnalysis strips markdown fences, validates the payload against the
// analysis schema and decodes it.
func parseAnalysis(content string) (domain.MusicAnalysis, error) {
	cleaned := stripFences(content)

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.MusicAnalysis{}, fmt.Errorf("unparsable output: %w", err)
	}
	if err := compiledSchema.Validate(payload); err != nil {
		return domain.MusicAnalysis{}, fmt.Errorf("schema mismatch: %w", err)
	}

	var analysis domain.MusicAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return domain.MusicAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return analysis, nil
}

func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

var fallbackResponses = map[string]string{
	"happy":     "Вижу отличное настроение! Подобрал треки, чтобы продлить позитив!",
	"sad":       "Понимаю тебя. Вот музыка, которая поможет пережить этот момент.",
	"angry":     "Чувствую энергию! Эти треки помогут выплеснуть эмоции.",
	"energetic": "Ловлю драйв! Вот музыка для заряда!",
	"calm":      "Подобрал спокойные треки для расслабления.",
	"neutral":   "Вот подборка под твое настроение!",
}

const fallbackClarification = "Не совсем понял, какую музыку ты хочешь. Можешь сказать подробнее — какое у тебя настроение или какой жанр?"

func fallbackResponse(emotion string) string {
	if r, ok := fallbackResponses[emotion]; ok {
		return r
	}
	return fallbackResponses["neutral"]
}
