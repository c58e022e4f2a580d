package elevenlabs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgallion1/docvoice/internal/tts"
)

func testServer(t *testing.T, synthStatus int) (*Client, *int) {
	t.Helper()
	var voicesCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/voices", func(w http.ResponseWriter, r *http.Request) {
		voicesCalls++
		if r.Header.Get("xi-api-key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"voices":[{"voice_id":"abc123","name":"Rachel","category":"premade","labels":{"locale":"en-US","gender":"female"}}]}`))
	})
	mux.HandleFunc("/v1/text-to-speech/abc123", func(w http.ResponseWriter, r *http.Request) {
		if synthStatus != http.StatusOK {
			w.WriteHeader(synthStatus)
			return
		}
		if got := r.URL.Query().Get("output_format"); got != "mp3_44100_128" {
			t.Errorf("output_format = %q", got)
		}
		w.Write([]byte("AUDIO"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "key", BaseURL: srv.URL}), &voicesCalls
}

func TestSynthesize(t *testing.T) {
	c, voicesCalls := testServer(t, http.StatusOK)

	audio, err := c.Synthesize(context.Background(), "hello", "rachel", "mp3")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "AUDIO" {
		t.Errorf("audio = %q", audio)
	}

	// Catalogue is cached across calls.
	if _, err := c.Synthesize(context.Background(), "again", "Rachel", "mp3"); err != nil {
		t.Fatalf("second Synthesize: %v", err)
	}
	if *voicesCalls != 1 {
		t.Errorf("voices fetched %d times", *voicesCalls)
	}
}

func TestSynthesizeUnknownVoice(t *testing.T) {
	c, _ := testServer(t, http.StatusOK)

	_, err := c.Synthesize(context.Background(), "hello", "Nobody", "mp3")
	var ttsErr *tts.Error
	if !errors.As(err, &ttsErr) {
		t.Fatalf("err = %v", err)
	}
	if ttsErr.Retryable {
		t.Error("unknown voice must not be retryable")
	}
}

func TestSynthesizeRateLimited(t *testing.T) {
	c, _ := testServer(t, http.StatusTooManyRequests)

	_, err := c.Synthesize(context.Background(), "hello", "Rachel", "mp3")
	var ttsErr *tts.Error
	if !errors.As(err, &ttsErr) {
		t.Fatalf("err = %v", err)
	}
	if !ttsErr.Retryable || ttsErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("error = %+v", ttsErr)
	}
}
