package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

// RemoteAnalyzer calls the external speech/emotion service: the clip goes
// out as multipart form data, the analysis comes back as JSON. Transport
// failures become error-status results, never Go errors; the pipeline
// branches on the status.
type RemoteAnalyzer struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewRemoteAnalyzer(url string, timeout time.Duration, log *slog.Logger) *RemoteAnalyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RemoteAnalyzer{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

var _ ports.AudioAnalyzer = (*RemoteAnalyzer)(nil)

func (a *RemoteAnalyzer) Process(ctx context.Context, audio []byte, format string) domain.AudioAnalysis {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip."+format)
	if err == nil {
		_, err = part.Write(audio)
	}
	if err == nil {
		err = mw.WriteField("format", format)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return a.failure(fmt.Errorf("build request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, &body)
	if err != nil {
		return a.failure(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return a.failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.failure(fmt.Errorf("audio service status %d", resp.StatusCode))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return a.failure(err)
	}

	var analysis domain.AudioAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return a.failure(fmt.Errorf("decode analysis: %w", err))
	}
	return analysis
}

func (a *RemoteAnalyzer) failure(err error) domain.AudioAnalysis {
	a.log.Warn("audio service call failed", "error", err)
	return domain.AudioAnalysis{Status: domain.AudioStatusError, Reason: "speech_service_unavailable"}
}

// Unavailable is the analyzer used when no speech service is configured.
// Text requests are unaffected; audio requests get a clean rejection.
type Unavailable struct{}

func (Unavailable) Process(context.Context, []byte, string) domain.AudioAnalysis {
	return domain.AudioAnalysis{Status: domain.AudioStatusError, Reason: "speech_service_unavailable"}
}
