package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
	"github.com/ewilliams-labs/moodtune/internal/intent"
	"github.com/ewilliams-labs/moodtune/internal/metrics"
	"github.com/ewilliams-labs/moodtune/internal/recommender"
)

// Fixed user-facing messages for rejected audio. Unknown reasons get the
// generic message.
var invalidAudioMessages = map[string]string{
	domain.ReasonSilence:            "В сообщении тишина. Попробуй записать еще раз.",
	domain.ReasonTooShort:           "Сообщение слишком короткое. Расскажи подробнее, какую музыку хочешь.",
	domain.ReasonTooNoisy:           "Слишком много шума, не могу разобрать. Попробуй в более тихом месте.",
	domain.ReasonTranscriptTooShort: "Не удалось распознать речь. Попробуй еще раз.",
	domain.ReasonNoAudio:            "Отправь голосовое сообщение, и я подберу музыку.",
}

const genericFailureMessage = "Что-то пошло не так. Попробуй еще раз."

const fallbackExplanation = "Параметры подобраны по эмоции голоса."

// Clarification guard thresholds.
const (
	minClearTranscript = 5
	minClearConfidence = 0.5
)

// Step names for per-stage timing.
const (
	stepAudio = "audio"
	stepLLM   = "llm"
)

type recommendEngine interface {
	Recommend(features domain.FeatureTarget, filters domain.FilterSet, topK int) recommender.Recommendation
}

type trackValidator interface {
	ValidateAndEnrich(ctx context.Context, tracks []domain.Track, maxExternalCalls int) []domain.ValidatedTrack
}

type metricsRecorder interface {
	Submit(rec domain.RequestMetrics)
}

// Options tune the pipeline per deployment.
type Options struct {
	TopK             int
	MaxExternalCalls int
	// UseExternalSearch enables the external catalog fallback when the local
	// engine comes up short.
	UseExternalSearch bool
}

// Request is one recommendation request. Audio takes precedence; a request
// with neither audio nor transcript is rejected at the entry guard.
type Request struct {
	UserID     string
	Audio      []byte
	Format     string
	Transcript string
	Emotion    string
	Confidence float64
}

// Pipeline runs one request through the fixed stage sequence: audio, intent
// extraction, parameter inference, recommendation, external fallback,
// validation, response generation. Stages never run out of order and never
// repeat.
type Pipeline struct {
	audio     ports.AudioAnalyzer
	extractor *intent.Extractor
	inference ports.InferenceProvider
	engine    recommendEngine
	external  ports.ExternalCatalogProvider
	validator trackValidator
	recorder  metricsRecorder
	opts      Options
	log       *slog.Logger
}

func NewPipeline(
	audio ports.AudioAnalyzer,
	inference ports.InferenceProvider,
	engine recommendEngine,
	external ports.ExternalCatalogProvider,
	validator trackValidator,
	recorder metricsRecorder,
	opts Options,
	log *slog.Logger,
) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxExternalCalls <= 0 {
		opts.MaxExternalCalls = 3
	}
	return &Pipeline{
		audio:     audio,
		extractor: intent.NewExtractor(),
		inference: inference,
		engine:    engine,
		external:  external,
		validator: validator,
		recorder:  recorder,
		opts:      opts,
		log:       log,
	}
}

// Process runs the full pipeline. It never panics outward: any unexpected
// failure becomes a generic failed result and the metrics record is still
// written.
func (p *Pipeline) Process(ctx context.Context, req Request) (result domain.PipelineResult) {
	collector := metrics.StartRequest(req.UserID)

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline failure", "panic", r)
			rec := collector.Record()
			rec.Success = false
			rec.Error = fmt.Sprint(r)
			metrics.RequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			result = domain.PipelineResult{Success: false, ErrorMessage: genericFailureMessage}
		}
		final := collector.Finalize()
		metrics.ProcessingDuration.Observe(final.ProcessingTimeSec)
		p.recorder.Submit(final)
	}()

	return p.run(ctx, req, collector)
}

func (p *Pipeline) run(ctx context.Context, req Request, collector *metrics.Collector) domain.PipelineResult {
	rec := collector.Record()

	collector.StartStep(stepAudio)
	analysis := p.ingestAudio(ctx, req)
	rec.AudioDurationSec = analysis.Duration
	rec.STTTimeSec = collector.EndStep(stepAudio)

	if analysis.Status != domain.AudioStatusOK {
		reason := analysis.Reason
		if reason == "" {
			reason = analysis.Status
		}
		rec.AudioValid = false
		rec.ValidationError = reason
		rec.Success = false
		rec.Error = reason
		metrics.AudioRejectionsTotal.WithLabelValues(reason).Inc()
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeInvalidAudio).Inc()

		return domain.PipelineResult{
			Success:      false,
			ErrorMessage: rejectionMessage(analysis),
			Transcript:   analysis.Transcript,
			AudioEmotion: analysis.Emotion,
		}
	}

	rec.AudioValid = true
	rec.Transcript = analysis.Transcript
	rec.TranscriptLength = len([]rune(analysis.Transcript))
	rec.Emotion = analysis.Emotion
	rec.EmotionConfidence = analysis.EmotionScore

	userIntent := p.extractor.Extract(analysis.Transcript, analysis.Emotion, analysis.EmotionScore)
	rec.IntentGenres = strings.Join(userIntent.Genres, ",")
	rec.IntentLanguage = userIntent.Language
	rec.IntentCount = userIntent.SignalCount()
	p.log.Info("intent extracted",
		"genres", userIntent.Genres,
		"language", userIntent.Language,
		"artist", userIntent.Artist,
		"emotion", userIntent.AudioEmotion)

	if needsClarification(analysis, userIntent) {
		p.log.Info("request unclear, asking for clarification")
		clarification := p.inference.GenerateClarification(ctx, userIntent)
		rec.Success = true
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeClarification).Inc()

		return domain.PipelineResult{
			Success:      true,
			ResponseText: clarification,
			Tracks:       []domain.ValidatedTrack{},
			Transcript:   analysis.Transcript,
			AudioEmotion: analysis.Emotion,
			Intent:       &userIntent,
		}
	}

	collector.StartStep(stepLLM)
	music, err := p.inference.Analyze(ctx, userIntent)
	rec.LLMTimeSec = collector.EndStep(stepLLM)
	rec.LLMSuccess = err == nil
	if err != nil {
		p.log.Warn("parameter inference failed, using emotion profile", "error", err)
		metrics.InferenceFallbacksTotal.Inc()
		music = domain.MusicAnalysis{
			MoodInterpretation: "Настроение: " + domain.ProfileFor(userIntent.AudioEmotion).Description,
			Features:           domain.FallbackTarget(userIntent.AudioEmotion),
			Explanation:        fallbackExplanation,
		}
	}

	// Intent-derived filters backfill whatever inference left empty.
	if userIntent.Language != "" && music.Filters.Language == "" {
		music.Filters.Language = userIntent.Language
	}
	if len(userIntent.Genres) > 0 && len(music.Filters.Genres) == 0 {
		music.Filters.Genres = userIntent.Genres
	}

	rec.TargetValence = music.Features.Valence
	rec.TargetEnergy = music.Features.Energy
	rec.TargetDanceability = music.Features.Danceability
	rec.TargetTempo = music.Features.Tempo

	recommendation := p.engine.Recommend(music.Features, music.Filters, p.opts.TopK)
	tracks := recommendation.Tracks
	rec.TracksFromDataset = len(tracks)
	p.log.Info("local recommendation done", "tracks", len(tracks), "filters", recommendation.FiltersApplied)

	if p.opts.UseExternalSearch && len(tracks) < p.opts.TopK && p.external.IsAvailable() {
		extra := p.searchExternal(ctx, userIntent, music.Features, p.opts.TopK-len(tracks))
		if len(extra) > 0 {
			tracks = append(tracks, extra...)
			rec.TracksFromExternal = len(extra)
			metrics.ExternalFallbacksTotal.Inc()
			p.log.Info("external fallback added tracks", "tracks", len(extra))
		}
	}

	validated := p.validator.ValidateAndEnrich(ctx, tracks, p.opts.MaxExternalCalls)
	rec.TracksFound = len(validated)

	responseText := p.inference.GenerateResponse(ctx, validated, userIntent, music.MoodInterpretation)

	rec.Success = true
	metrics.RequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.TracksReturned.Observe(float64(len(validated)))

	return domain.PipelineResult{
		Success:            true,
		ResponseText:       responseText,
		Tracks:             validated,
		Transcript:         analysis.Transcript,
		AudioEmotion:       analysis.Emotion,
		Intent:             &userIntent,
		MoodInterpretation: music.MoodInterpretation,
		Features:           &music.Features,
		Filters:            &music.Filters,
		FiltersApplied:     recommendation.FiltersApplied,
	}
}

// ingestAudio resolves the request into an audio analysis: recorded audio
// goes through the analyzer, a bare transcript is accepted as already
// transcribed, and an empty request is rejected.
func (p *Pipeline) ingestAudio(ctx context.Context, req Request) domain.AudioAnalysis {
	if len(req.Audio) > 0 {
		return p.audio.Process(ctx, req.Audio, req.Format)
	}
	if strings.TrimSpace(req.Transcript) != "" {
		return domain.AudioAnalysis{
			Status:       domain.AudioStatusOK,
			Transcript:   req.Transcript,
			Emotion:      req.Emotion,
			EmotionScore: req.Confidence,
		}
	}
	return domain.AudioAnalysis{Status: domain.AudioStatusError, Reason: domain.ReasonNoAudio}
}

func rejectionMessage(analysis domain.AudioAnalysis) string {
	if msg, ok := invalidAudioMessages[analysis.Reason]; ok {
		return msg
	}
	if analysis.Status == domain.AudioStatusError && analysis.Reason != "" {
		return fmt.Sprintf("Ошибка: %s", analysis.Reason)
	}
	return genericFailureMessage
}

// needsClarification holds when the transcript is nearly empty, carries no
// genre or mood signal, and the voice emotion is too uncertain to act on.
func needsClarification(analysis domain.AudioAnalysis, ui domain.UserIntent) bool {
	return len([]rune(analysis.Transcript)) < minClearTranscript &&
		len(ui.Genres) == 0 &&
		len(ui.MoodKeywords) == 0 &&
		analysis.EmotionScore < minClearConfidence
}

// searchExternal queries the external catalog when the local pool is short.
// A recognized emotion drives a mood search; otherwise a free-text query is
// built from the lead genre and keywords.
func (p *Pipeline) searchExternal(ctx context.Context, ui domain.UserIntent, features domain.FeatureTarget, limit int) []domain.Track {
	var genre string
	if len(ui.Genres) > 0 {
		genre = ui.Genres[0]
	}

	var results []ports.RawExternalTrack
	if mood := domain.MoodSearchTerm[ui.AudioEmotion]; mood != "" {
		results = p.external.SearchByMood(ctx, mood, genre, ui.Language, limit)
	} else {
		var parts []string
		if genre != "" {
			parts = append(parts, genre)
		}
		if len(ui.FreeKeywords) > 2 {
			parts = append(parts, ui.FreeKeywords[:2]...)
		} else {
			parts = append(parts, ui.FreeKeywords...)
		}
		query := strings.Join(parts, " ")
		if query == "" {
			query = "popular music"
		}
		market := "US"
		if ui.Language == "ru" {
			market = "RU"
		}
		results = p.external.SearchTracks(ctx, query, limit, market)
	}

	language := ui.Language
	if language == "" {
		language = "other"
	}

	tracks := make([]domain.Track, 0, len(results))
	for _, item := range results {
		t := domain.Track{
			CatalogID:    item.ID,
			Name:         item.Name,
			Artist:       item.Artist,
			Language:     language,
			Valence:      features.Valence,
			Energy:       features.Energy,
			Danceability: features.Danceability,
			Acousticness: features.Acousticness,
			Tempo:        features.Tempo,
			URL:          item.URL,
		}
		if len(item.ReleaseDate) >= 4 {
			var year int
			if _, err := fmt.Sscanf(item.ReleaseDate[:4], "%d", &year); err == nil {
				t.Year = year
			}
		}
		tracks = append(tracks, t)
	}
	return tracks
}
