package track

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProcessedTrackerMarkAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	tracker := NewProcessedTracker(path)
	if tracker.IsProcessed("<a@example.com>") {
		t.Fatal("fresh tracker should be empty")
	}

	tracker.MarkProcessed("<a@example.com>")
	tracker.MarkProcessed("<b@example.com>")
	tracker.MarkProcessed("<a@example.com>") // idempotent

	if !tracker.IsProcessed("<a@example.com>") {
		t.Error("marked id not reported as processed")
	}
	if tracker.Count() != 2 {
		t.Errorf("Count = %d, want 2", tracker.Count())
	}

	reloaded := NewProcessedTracker(path)
	if !reloaded.IsProcessed("<b@example.com>") {
		t.Error("processed set did not survive reload")
	}
	if reloaded.Count() != 2 {
		t.Errorf("reloaded Count = %d, want 2", reloaded.Count())
	}
}

func TestProcessedTrackerMissingFile(t *testing.T) {
	tracker := NewProcessedTracker(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if tracker.Count() != 0 {
		t.Errorf("Count = %d, want 0", tracker.Count())
	}
}

func TestProcessedTrackerCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	tracker := NewProcessedTracker(path)
	if tracker.Count() != 0 {
		t.Errorf("corrupt file should yield an empty tracker, Count = %d", tracker.Count())
	}
}

func TestProcessedTrackerReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	tracker := NewProcessedTracker(path)
	tracker.MarkProcessed("<a@example.com>")
	if err := tracker.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if tracker.Count() != 0 {
		t.Errorf("Count = %d after reset, want 0", tracker.Count())
	}
	if NewProcessedTracker(path).Count() != 0 {
		t.Error("reset was not persisted")
	}
}

func TestFalsePositivesTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")

	tracker := NewFalsePositivesTracker(path)
	tracker.Add("<x@example.com>", "Google", "Software Engineer")

	if !tracker.IsFalsePositive("<x@example.com>", "", "") {
		t.Error("message id not tracked")
	}
	if !tracker.IsFalsePositive("<other@example.com>", "google", "SOFTWARE ENGINEER") {
		t.Error("company/position lookup should be case-insensitive")
	}
	if tracker.IsFalsePositive("<other@example.com>", "Google", "Backend Engineer") {
		t.Error("different position should not match")
	}

	// Re-adding the same combination must not duplicate entries.
	tracker.Add("<x@example.com>", "Google", "Software Engineer")
	messageIDs, combinations := tracker.Stats()
	if messageIDs != 1 || combinations != 1 {
		t.Errorf("Stats = (%d, %d), want (1, 1)", messageIDs, combinations)
	}

	reloaded := NewFalsePositivesTracker(path)
	if !reloaded.IsFalsePositive("", "Google", "Software Engineer") {
		t.Error("false positive did not survive reload")
	}
}

func TestFalsePositivesTrackerReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")

	tracker := NewFalsePositivesTracker(path)
	tracker.Add("<x@example.com>", "Google", "Software Engineer")
	if err := tracker.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	messageIDs, combinations := NewFalsePositivesTracker(path).Stats()
	if messageIDs != 0 || combinations != 0 {
		t.Errorf("Stats = (%d, %d) after reset, want (0, 0)", messageIDs, combinations)
	}
}

func TestMergedTrackerRedirect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.json")

	tracker := NewMergedTracker(path)
	tracker.RecordMerge(
		[]string{"thread-a", "thread-b", ""},
		"thread-x,thread-y",
		MergeRecord{SourceRow: 5, TargetRow: 3, SourceCompany: "Google", TargetCompany: "Google"},
	)

	if got := tracker.Redirect("thread-a"); got != "thread-x,thread-y" {
		t.Errorf("Redirect(thread-a) = %q", got)
	}
	if got := tracker.Redirect("thread-b"); got != "thread-x,thread-y" {
		t.Errorf("Redirect(thread-b) = %q", got)
	}
	if got := tracker.Redirect("unmerged"); got != "" {
		t.Errorf("Redirect(unmerged) = %q, want empty", got)
	}
	if got := tracker.Redirect(""); got != "" {
		t.Errorf("empty thread id must never redirect, got %q", got)
	}

	redirections, merges := tracker.Stats()
	if redirections != 2 || merges != 1 {
		t.Errorf("Stats = (%d, %d), want (2, 1)", redirections, merges)
	}

	reloaded := NewMergedTracker(path)
	if got := reloaded.Redirect("thread-a"); got != "thread-x,thread-y" {
		t.Errorf("redirection did not survive reload, got %q", got)
	}
	if reloaded.data.MergeHistory[0].Timestamp.IsZero() {
		t.Error("merge record should carry a timestamp")
	}
}

func TestMergedTrackerReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.json")

	tracker := NewMergedTracker(path)
	tracker.RecordMerge([]string{"thread-a"}, "thread-x", MergeRecord{})
	if err := tracker.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	redirections, merges := NewMergedTracker(path).Stats()
	if redirections != 0 || merges != 0 {
		t.Errorf("Stats = (%d, %d) after reset, want (0, 0)", redirections, merges)
	}
}

func TestResolutionTrackerNormalizedLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolutions.json")

	tracker := NewResolutionTracker(path)
	tracker.Save("Company", "Google", "Google LLC", "Google", ResolutionKeepStored)

	res := tracker.Find("company", "  GOOGLE ", "google   llc")
	if res == nil {
		t.Fatal("normalized lookup failed")
	}
	if res.ChosenValue != "Google" || res.Kind != ResolutionKeepStored {
		t.Errorf("unexpected resolution: %+v", res)
	}

	if tracker.Find("Company", "Google", "Alphabet") != nil {
		t.Error("different incoming value must not match")
	}
	if tracker.Find("Position", "Google", "Google LLC") != nil {
		t.Error("different field must not match")
	}

	reloaded := NewResolutionTracker(path)
	if reloaded.Count() != 1 {
		t.Errorf("reloaded Count = %d, want 1", reloaded.Count())
	}
}

func TestResolutionTrackerReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolutions.json")

	tracker := NewResolutionTracker(path)
	tracker.Save("Company", "A", "B", "B", ResolutionUseIncoming)
	if err := tracker.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if NewResolutionTracker(path).Count() != 0 {
		t.Error("reset was not persisted")
	}
}
