package pipeline

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestJobStorePutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("deck.pptx", []byte("data"))
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("job not found")
	}
	if got.Filename != "deck.pptx" {
		t.Errorf("filename = %q", got.Filename)
	}
	if store.Get("missing") != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(time.Millisecond)
	job := NewJob("old.md", nil)
	job.UpdatedAt = time.Now().Add(-time.Minute)
	store.Put(job)

	fresh := NewJob("fresh.md", nil)
	store.Put(fresh)

	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expired job survived cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("fresh job evicted")
	}
}

func TestJobSnapshot(t *testing.T) {
	job := NewJob("doc.md", []byte("# hi"))
	job.SetStatus(StatusSynthesizing, "synthesizing sections")
	job.SetTitle("hi")
	job.SetTotalSections(3)
	job.RecordOutput(false, nil)
	job.RecordOutput(true, nil)
	job.RecordOutput(false, errors.New("boom"))
	job.AddError("Section X: boom")

	snap := job.Snapshot()
	if snap.Status != StatusSynthesizing || snap.Title != "hi" {
		t.Errorf("snapshot = %+v", snap)
	}
	p := snap.Progress
	if p.TotalSections != 3 || p.Synthesized != 1 || p.Skipped != 1 || p.Failed != 1 {
		t.Errorf("progress = %+v", p)
	}
	if len(p.Errors) != 1 {
		t.Errorf("errors = %v", p.Errors)
	}

	// Snapshots must serialize without touching the raw file bytes.
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["fileData"]; ok {
		t.Error("file data leaked into snapshot JSON")
	}
}

func TestJobSnapshotEmptyErrors(t *testing.T) {
	snap := NewJob("doc.md", nil).Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("errors should serialize as [], not null")
	}
}

func TestGenerateULID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("len(%q) = %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
