package audio

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

// Validation thresholds over the decoded signal. Frame-level RMS above
// silenceThreshold counts as speech; a clip qualifies when at least
// minSpeechRatio of its frames do. Mean zero-crossing rate above
// noiseThreshold marks the clip as noise rather than speech.
const (
	silenceThreshold   = 0.003
	minSpeechRatio     = 0.05
	noiseThreshold     = 0.4
	minDurationSec     = 1.0
	frameSize          = 2048
	minTranscriptWords = 2
)

// Prevalidator screens a voice clip locally before handing it to the
// upstream speech/emotion service, so obviously unusable audio never costs
// an upstream call. It implements ports.AudioAnalyzer itself.
type Prevalidator struct {
	upstream ports.AudioAnalyzer
	log      *slog.Logger
}

func NewPrevalidator(upstream ports.AudioAnalyzer, log *slog.Logger) *Prevalidator {
	return &Prevalidator{upstream: upstream, log: log}
}

var _ ports.AudioAnalyzer = (*Prevalidator)(nil)

func (p *Prevalidator) Process(ctx context.Context, audio []byte, format string) domain.AudioAnalysis {
	if len(audio) == 0 {
		return domain.AudioAnalysis{Status: domain.AudioStatusError, Reason: domain.ReasonNoAudio}
	}

	// Only mp3 payloads are decodable locally; other formats go straight
	// through and rely on the upstream service's own validation.
	if strings.EqualFold(format, "mp3") {
		samples, sampleRate, err := decodeMono(bytes.NewReader(audio))
		if err != nil {
			p.log.Warn("audio decode failed", "error", err)
			return domain.AudioAnalysis{Status: domain.AudioStatusError, Reason: err.Error()}
		}

		s := analyzeSignal(samples, sampleRate)
		if reason, ok := s.reject(); ok {
			p.log.Info("audio rejected before upstream call", "reason", reason, "duration", s.duration)
			return domain.AudioAnalysis{
				Status:   domain.AudioStatusInvalid,
				Reason:   reason,
				Duration: s.duration,
			}
		}

		result := p.upstream.Process(ctx, audio, format)
		if result.Duration == 0 {
			result.Duration = s.duration
		}
		return checkTranscript(result)
	}

	return checkTranscript(p.upstream.Process(ctx, audio, format))
}

// checkTranscript demotes an ok result whose transcript is too short to be
// a usable request. Emotion fields survive so the clarification branch can
// still use them.
func checkTranscript(result domain.AudioAnalysis) domain.AudioAnalysis {
	if result.Status != domain.AudioStatusOK {
		return result
	}
	if len(strings.Fields(result.Transcript)) < minTranscriptWords {
		result.Status = domain.AudioStatusInvalid
		result.Reason = domain.ReasonTranscriptTooShort
	}
	return result
}

// signalStats summarizes the decoded clip for the rejection checks.
type signalStats struct {
	duration    float64
	speechRatio float64
	zcrMean     float64
}

// reject applies the checks in a fixed order: silence, then duration, then
// noise. The first failing check names the reason.
func (s signalStats) reject() (string, bool) {
	switch {
	case s.speechRatio < minSpeechRatio:
		return domain.ReasonSilence, true
	case s.duration < minDurationSec:
		return domain.ReasonTooShort, true
	case s.zcrMean > noiseThreshold:
		return domain.ReasonTooNoisy, true
	}
	return "", false
}

// decodeMono decodes an mp3 stream into normalized mono samples in [-1, 1].
// The decoder always emits 16-bit stereo; channels are averaged.
func decodeMono(r io.Reader) ([]float64, int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}

	buf := make([]byte, 4096)
	var samples []float64
	for {
		n, err := decoder.Read(buf)
		for i := 0; i+3 < n; i += 4 {
			left := int16(buf[i]) | int16(buf[i+1])<<8
			right := int16(buf[i+2]) | int16(buf[i+3])<<8
			samples = append(samples, (float64(left)+float64(right))/2/32768.0)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, err
		}
	}
	return samples, decoder.SampleRate(), nil
}

// analyzeSignal computes frame-level RMS activity and the mean zero-crossing
// rate over fixed non-overlapping frames.
func analyzeSignal(samples []float64, sampleRate int) signalStats {
	var s signalStats
	if sampleRate > 0 {
		s.duration = float64(len(samples)) / float64(sampleRate)
	}
	if len(samples) == 0 {
		return s
	}

	var frames, activeFrames int
	for start := 0; start < len(samples); start += frameSize {
		end := start + frameSize
		if end > len(samples) {
			end = len(samples)
		}
		if frameRMS(samples[start:end]) > silenceThreshold {
			activeFrames++
		}
		frames++
	}
	s.speechRatio = float64(activeFrames) / float64(frames)

	var crossings int
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	s.zcrMean = float64(crossings) / float64(len(samples))
	return s
}

func frameRMS(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
