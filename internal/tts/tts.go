// Package tts defines the synthesis capability consumed by the
// pipeline and the error taxonomy shared by all backend clients.
package tts

import (
	"context"
	"fmt"
)

// Synthesizer is the abstraction over a speech synthesis backend.
// Implementations must be safe for concurrent use: the pipeline may
// synthesize segments from independent sections in parallel.
type Synthesizer interface {
	// Synthesize renders text with the named voice and returns the raw
	// audio bytes in the requested output format ("mp3", "wav", ...).
	// The voice is a backend voice name; validity is only checked here.
	Synthesize(ctx context.Context, text, voice, format string) ([]byte, error)

	// Voices returns the backend's voice catalogue.
	Voices(ctx context.Context) ([]Voice, error)
}

// Voice describes one entry of a backend voice catalogue.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Locale   string `json:"locale"`
	Gender   string `json:"gender"`
}

// Error is a synthesis failure. Retryable marks transient conditions
// (rate limits, upstream 5xx) worth another attempt with backoff.
type Error struct {
	Service    string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("%s: %s", e.Service, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Quality selects a bitrate tier that each backend maps to its own
// native format names.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)
