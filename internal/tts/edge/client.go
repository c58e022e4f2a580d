// Package edge implements a synthesis backend on the free Microsoft
// Edge read-aloud service via edge-tts-go. Useful for trying scripts
// without API credentials; output is always mp3.
package edge

import (
	"context"

	"github.com/dgallion1/docvoice/internal/tts"
	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

// Client synthesizes through the Edge read-aloud websocket service.
// The service needs no credentials and ignores the requested format.
type Client struct{}

func New() *Client {
	return &Client{}
}

// Synthesize renders text with the named Edge neural voice
// (e.g. "en-US-AriaNeural").
func (c *Client) Synthesize(ctx context.Context, text, voice, format string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice))
	if err != nil {
		return nil, &tts.Error{Service: "edge", Message: err.Error()}
	}

	// The websocket transport has no context plumbing; transient
	// failures are retried by the pipeline like any other backend.
	audio, err := communicate.Stream()
	if err != nil {
		return nil, &tts.Error{Service: "edge", Message: err.Error(), Retryable: true}
	}
	if len(audio) == 0 {
		return nil, &tts.Error{Service: "edge", Message: "empty audio response"}
	}
	return audio, nil
}

// Voices fetches the Edge voice catalogue.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := edge_tts.ListVoices("")
	if err != nil {
		return nil, &tts.Error{Service: "edge", Message: err.Error(), Retryable: true}
	}
	out := make([]tts.Voice, 0, len(raw))
	for _, v := range raw {
		out = append(out, tts.Voice{
			ID:       v.ShortName,
			Name:     v.ShortName,
			Category: "edge",
			Locale:   v.Locale,
			Gender:   v.Gender,
		})
	}
	return out, nil
}
