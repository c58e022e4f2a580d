// Package azure implements the Azure Speech Service REST backend.
package azure

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docvoice/internal/tts"
)

// Client calls the Azure Cognitive Services TTS endpoints for one
// region. Synthesis wraps the text in the minimal SSML envelope the
// v1 endpoint requires; no markup beyond the voice element is emitted.
type Client struct {
	apiKey     string
	region     string
	quality    tts.Quality
	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	voices []tts.Voice
}

// Config configures the Azure client.
type Config struct {
	APIKey  string
	Region  string // e.g. "westus"
	Quality tts.Quality
	BaseURL string // override for tests
}

func New(cfg Config) *Client {
	if cfg.Quality == "" {
		cfg.Quality = tts.QualityHigh
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com", cfg.Region)
	}
	return &Client{
		apiKey:  cfg.APIKey,
		region:  cfg.Region,
		quality: cfg.Quality,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type azureVoice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

// Voices fetches the region's voice list. Short names double as IDs,
// which keeps the catalogue shape uniform across backends.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voices != nil {
		return c.voices, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cognitiveservices/voices/list", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tts.Error{Service: "azure", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var raw []azureVoice
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}

	out := make([]tts.Voice, 0, len(raw))
	for _, v := range raw {
		out = append(out, tts.Voice{
			ID:       v.ShortName,
			Name:     v.ShortName,
			Category: "azure",
			Locale:   v.Locale,
			Gender:   v.Gender,
		})
	}
	c.voices = out
	return out, nil
}

// Synthesize renders text with the named voice. Azure addresses voices
// by short name directly, so no catalogue lookup is needed.
func (c *Client) Synthesize(ctx context.Context, text, voice, format string) ([]byte, error) {
	ssml := speakEnvelope(voice, text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cognitiveservices/v1", strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.nativeFormat(format))
	req.Header.Set("User-Agent", "docvoice")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tts.Error{Service: "azure", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, apiError(resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &tts.Error{Service: "azure", Message: "read audio: " + err.Error(), Retryable: true}
	}
	if len(audio) == 0 {
		return nil, &tts.Error{Service: "azure", Message: "empty audio response"}
	}
	return audio, nil
}

// speakEnvelope builds the minimal SSML wrapper the v1 endpoint
// demands. Text is XML-escaped; nothing else is generated.
func speakEnvelope(voice, text string) string {
	var esc strings.Builder
	xml.EscapeText(&esc, []byte(text))
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='en-US'><voice name='%s'>%s</voice></speak>`,
		voice, esc.String(),
	)
}

// nativeFormat maps the generic container format and quality tier to
// an Azure output format name.
func (c *Client) nativeFormat(format string) string {
	switch format {
	case "wav":
		return "riff-24khz-16bit-mono-pcm"
	case "ogg":
		return "ogg-24khz-16bit-mono-opus"
	case "webm":
		return "webm-24khz-16bit-mono-opus"
	}
	switch c.quality {
	case tts.QualityLow:
		return "audio-24khz-48kbitrate-mono-mp3"
	case tts.QualityMedium:
		return "audio-24khz-96kbitrate-mono-mp3"
	default:
		return "audio-24khz-160kbitrate-mono-mp3"
	}
}

func apiError(status int, body []byte) *tts.Error {
	return &tts.Error{
		Service:    "azure",
		StatusCode: status,
		Message:    string(body),
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
