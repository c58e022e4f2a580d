package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docvoice/internal/script"
)

func parseResolved(t *testing.T, md string) *script.Document {
	t.Helper()
	doc := script.Parse([]byte(md))
	script.Resolve(doc, "DefaultVoice")
	return doc
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBuildPlanNames(t *testing.T) {
	doc := parseResolved(t, `# Guide

## Getting Started

Welcome text.

## Section 2.3: Advanced Topics

Deep dive.
`)
	dir := t.TempDir()
	plan := BuildPlan(doc, PlanOptions{OutputDir: dir, Format: "mp3"}, discard())

	if len(plan.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(plan.Outputs))
	}
	want := []string{
		"guide_getting_started.mp3",
		"guide_section_2_3_advanced_topics.mp3",
	}
	for i, w := range want {
		if got := filepath.Base(plan.Outputs[i].Path); got != w {
			t.Errorf("output[%d] = %q, want %q", i, got, w)
		}
		if plan.Outputs[i].Skip {
			t.Errorf("output[%d] marked skip with no file on disk", i)
		}
	}
}

func TestBuildPlanOverrides(t *testing.T) {
	doc := parseResolved(t, `# Guide

## Getting Started

Welcome text.

## Wrapping Up

Closing text.
`)
	dir := t.TempDir()
	plan := BuildPlan(doc, PlanOptions{
		OutputDir: dir,
		Format:    "mp3",
		Overrides: map[string]string{
			"Getting Started": "intro",
			// A filename with an extension passes through verbatim.
			"Wrapping Up": "outro.mp3",
		},
	}, discard())

	if len(plan.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(plan.Outputs))
	}
	if got := filepath.Base(plan.Outputs[0].Path); got != "intro.mp3" {
		t.Errorf("extensionless override not applied: %q", got)
	}
	if got := filepath.Base(plan.Outputs[1].Path); got != "outro.mp3" {
		t.Errorf("verbatim override not applied: %q", got)
	}
}

func TestBuildPlanSkipExisting(t *testing.T) {
	doc := parseResolved(t, `# Guide

## One

Alpha.

## Two

Beta.
`)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "guide_one.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Empty files do not count as existing audio.
	if err := os.WriteFile(filepath.Join(dir, "guide_two.mp3"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	plan := BuildPlan(doc, PlanOptions{OutputDir: dir, Format: "mp3"}, discard())
	if !plan.Outputs[0].Skip {
		t.Error("existing file should mark output skip")
	}
	if plan.Outputs[1].Skip {
		t.Error("empty file should not mark output skip")
	}
}

func TestBuildPlanCollisionLastWins(t *testing.T) {
	doc := parseResolved(t, `# Guide

## Same Name

First body.

## Same Name

Second body.
`)
	dir := t.TempDir()
	plan := BuildPlan(doc, PlanOptions{OutputDir: dir, Format: "mp3"}, discard())

	if len(plan.Outputs) != 1 {
		t.Fatalf("expected collision to collapse to 1 output, got %d", len(plan.Outputs))
	}
	if got := plan.Outputs[0].Segments[0].Text; got != "Second body." {
		t.Errorf("later section should win, got %q", got)
	}
}

func TestBuildPlanSkipsContainers(t *testing.T) {
	doc := parseResolved(t, `# Guide

## Parent

### Child

Only the child speaks.
`)
	plan := BuildPlan(doc, PlanOptions{OutputDir: t.TempDir(), Format: "mp3"}, discard())
	if len(plan.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(plan.Outputs))
	}
	if got := filepath.Base(plan.Outputs[0].Path); got != "guide_parent_child.mp3" {
		t.Errorf("path = %q", got)
	}
}
