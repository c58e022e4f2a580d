package edge

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/docvoice/internal/tts"
)

var _ tts.Synthesizer = (*Client)(nil)

func TestSynthesizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Synthesize(ctx, "hello", "en-US-AriaNeural", "mp3"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestVoicesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Voices(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
