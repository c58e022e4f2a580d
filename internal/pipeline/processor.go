package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/docvoice/internal/audio"
	"github.com/dgallion1/docvoice/internal/tts"
)

// Processor executes synthesis plans against a backend.
type Processor struct {
	Synth  tts.Synthesizer
	Format string

	// Concurrency bounds how many sections synthesize in parallel.
	// Segments within a section always run in order.
	Concurrency int
	MaxRetries  int

	Logger *slog.Logger

	// OnOutput, when set, is called after each output finishes
	// (including skips). err is nil on success or skip.
	OnOutput func(out Output, err error)
}

// Failure records one section that could not be synthesized.
type Failure struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	Err   string `json:"error"`
}

// Report summarizes one run.
type Report struct {
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Run synthesizes every non-skipped output of the plan. A failed
// section is recorded and does not stop the rest; files are written
// atomically so a crash never leaves partial audio behind.
func (p *Processor) Run(ctx context.Context, plan Plan) Report {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	retries := p.MaxRetries
	if retries <= 0 {
		retries = MaxRetries
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
		sem    = make(chan struct{}, concurrency)
	)

	for _, out := range plan.Outputs {
		if out.Skip {
			logger.Info("audio exists, skipping", "path", out.Path, "section", out.Title)
			report.Skipped++
			if p.OnOutput != nil {
				p.OnOutput(out, nil)
			}
			continue
		}

		wg.Add(1)
		go func(out Output) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			length, err := p.synthesizeOutput(ctx, out, retries, logger)

			mu.Lock()
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, Failure{
					Title: out.Title, Path: out.Path, Err: err.Error(),
				})
			} else {
				report.Processed++
			}
			mu.Unlock()

			if err != nil {
				logger.Error("section failed", "section", out.Title, "path", out.Path, "error", err)
			} else {
				attrs := []any{
					"section", out.Title,
					"path", out.Path,
					"segments", len(out.Segments),
					"took", time.Since(start).Round(time.Millisecond),
				}
				if length > 0 {
					attrs = append(attrs, "audio_length", length.Round(time.Second))
				}
				logger.Info("section synthesized", attrs...)
			}
			if p.OnOutput != nil {
				p.OnOutput(out, err)
			}
		}(out)
	}

	wg.Wait()
	return report
}

// synthesizeOutput renders all segments of one section and writes the
// concatenated audio to out.Path via a same-directory temp file. For
// mp3 output it also reports the playing time of the merged audio.
func (p *Processor) synthesizeOutput(ctx context.Context, out Output, retries int, logger *slog.Logger) (time.Duration, error) {
	parts := make([][]byte, 0, len(out.Segments))
	for _, seg := range out.Segments {
		data, err := p.synthesizeSegment(ctx, seg.Text, seg.Voice, retries, logger)
		if err != nil {
			return 0, fmt.Errorf("segment voiced by %s: %w", seg.Voice, err)
		}
		parts = append(parts, data)
	}

	merged, err := audio.Concat(p.Format, parts)
	if err != nil {
		return 0, fmt.Errorf("concat %d segments: %w", len(parts), err)
	}
	var length time.Duration
	if p.Format == "mp3" {
		if d, err := audio.MP3Duration(merged); err == nil {
			length = d
		}
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(out.Path), ".docvoice-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(merged); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), out.Path); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("move into place: %w", err)
	}
	return length, nil
}

func (p *Processor) synthesizeSegment(ctx context.Context, text, voice string, retries int, logger *slog.Logger) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt - 1)
			logger.Warn("retrying synthesis", "voice", voice, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		data, err := p.Synth.Synthesize(ctx, text, voice, p.Format)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", retries+1, lastErr)
}
