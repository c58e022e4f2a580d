// Package elevenlabs implements the ElevenLabs REST backend.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docvoice/internal/tts"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client calls the ElevenLabs v1 API. Voice names are resolved to
// voice IDs through the catalogue, which is fetched once and cached.
type Client struct {
	apiKey     string
	modelID    string
	quality    tts.Quality
	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	voices []tts.Voice // catalogue cache
}

// Config configures the ElevenLabs client.
type Config struct {
	APIKey  string
	ModelID string // defaults to eleven_monolingual_v1
	Quality tts.Quality
	BaseURL string // override for tests
}

func New(cfg Config) *Client {
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_monolingual_v1"
	}
	if cfg.Quality == "" {
		cfg.Quality = tts.QualityHigh
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		modelID: cfg.ModelID,
		quality: cfg.Quality,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type voicesResponse struct {
	Voices []struct {
		VoiceID  string            `json:"voice_id"`
		Name     string            `json:"name"`
		Category string            `json:"category"`
		Labels   map[string]string `json:"labels"`
	} `json:"voices"`
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Voices fetches the voice catalogue.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voices != nil {
		return c.voices, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tts.Error{Service: "elevenlabs", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var vr voicesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}

	out := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		out = append(out, tts.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Category: v.Category,
			Locale:   v.Labels["locale"],
			Gender:   v.Labels["gender"],
		})
	}
	c.voices = out
	return out, nil
}

// Synthesize renders text with the named voice. The voice name is
// matched against the catalogue case-insensitively; an unknown name is
// a permanent (non-retryable) error.
func (c *Client) Synthesize(ctx context.Context, text, voice, format string) ([]byte, error) {
	voiceID, err := c.findVoiceID(ctx, voice)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, c.nativeFormat(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tts.Error{Service: "elevenlabs", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, apiError(resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &tts.Error{Service: "elevenlabs", Message: "read audio: " + err.Error(), Retryable: true}
	}
	if len(audio) == 0 {
		return nil, &tts.Error{Service: "elevenlabs", Message: "empty audio response"}
	}
	return audio, nil
}

func (c *Client) findVoiceID(ctx context.Context, name string) (string, error) {
	voices, err := c.Voices(ctx)
	if err != nil {
		return "", err
	}
	for _, v := range voices {
		if strings.EqualFold(v.Name, name) {
			return v.ID, nil
		}
	}
	return "", &tts.Error{Service: "elevenlabs", Message: fmt.Sprintf("voice %q not found", name)}
}

// nativeFormat maps the generic container format and the configured
// quality tier to an ElevenLabs output_format value.
func (c *Client) nativeFormat(format string) string {
	if format != "" && format != "mp3" {
		// Only mp3 tiers are exposed here; anything else passes
		// through for callers that already hold a native name.
		return format
	}
	switch c.quality {
	case tts.QualityLow:
		return "mp3_44100_32"
	case tts.QualityMedium:
		return "mp3_44100_64"
	default:
		return "mp3_44100_128"
	}
}

func apiError(status int, body []byte) *tts.Error {
	return &tts.Error{
		Service:    "elevenlabs",
		StatusCode: status,
		Message:    string(body),
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
