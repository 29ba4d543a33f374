package synth

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vorojar/Qwen3-TTS/internal/audio"
	"github.com/vorojar/Qwen3-TTS/internal/domain"
	"github.com/vorojar/Qwen3-TTS/internal/errors"
)

// Config holds the upstream TTS engine connection settings.
type Config struct {
	// Endpoint is the full URL of the engine's generate route.
	Endpoint string
	// RequestsPerSecond throttles calls to the engine. Zero means one
	// request per second.
	RequestsPerSecond float64
	// Timeout bounds a single synthesis request end to end.
	Timeout time.Duration
}

// Client is the HTTP Synthesizer. The engine is GPU-bound, so requests are
// rate limited client-side rather than queued upstream.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	endpoint    string
	sampleRate  int
}

// NewClient creates a synthesis client for the configured engine.
func NewClient(cfg Config, sampleRate int, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:      logger,
		endpoint:    cfg.Endpoint,
		sampleRate:  sampleRate,
	}
}

// generateRequest is the engine's wire format for one synthesis call.
type generateRequest struct {
	Text          string                `json:"text"`
	Language      string                `json:"language,omitempty"`
	Instruct      string                `json:"instruct,omitempty"`
	Mode          domain.GenerationMode `json:"mode"`
	Speaker       string                `json:"speaker,omitempty"`
	VoiceID       string                `json:"voice_id,omitempty"`
	ClonePromptID string                `json:"clone_prompt_id,omitempty"`
}

// generateResponse carries raw PCM16LE samples, base64 over the wire.
type generateResponse struct {
	Audio      []byte `json:"audio"`
	SampleRate int    `json:"sample_rate"`
	Error      string `json:"error,omitempty"`
}

// Synthesize posts the text to the engine and returns the finished clip.
// All failure modes come back as SYNTHESIS-coded errors so callers can roll
// back placeholders uniformly.
func (c *Client) Synthesize(ctx context.Context, text string, params Params) (*Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "rate limit")
	}

	body := generateRequest{
		Text:          text,
		Language:      params.Language,
		Instruct:      params.Instruct,
		Mode:          params.Voice.Mode,
		Speaker:       params.Voice.Speaker,
		VoiceID:       params.Voice.VoiceID,
		ClonePromptID: params.Voice.ClonePromptID,
	}
	var buf bytes.Buffer
	if err := json.MarshalWrite(&buf, body); err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "encode request")
	}

	c.logger.Debug("synthesizing segment",
		"chars", len([]rune(text)),
		"mode", params.Voice.Mode,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "synthesis request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Synthesisf("engine returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var genResp generateResponse
	if err := json.UnmarshalRead(resp.Body, &genResp); err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "parse response")
	}
	if genResp.Error != "" {
		return nil, errors.Synthesis(genResp.Error)
	}
	if len(genResp.Audio) == 0 {
		return nil, errors.Synthesis("engine returned no audio")
	}

	sampleRate := genResp.SampleRate
	if sampleRate <= 0 {
		sampleRate = c.sampleRate
	}

	clip, err := audio.EncodeClip(genResp.Audio)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSynthesis, "encode clip")
	}

	return &Result{
		Audio:    clip,
		Duration: audio.Duration(genResp.Audio, sampleRate),
	}, nil
}
