package track

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"
)

// MergeRecord is one audit entry for an executed merge.
type MergeRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	SourceRow     int       `json:"source_row"`
	TargetRow     int       `json:"target_row"`
	SourceCompany string    `json:"source_company"`
	TargetCompany string    `json:"target_company"`
}

// MergedTracker maps conversation ids of merged-away applications to the
// thread id set of the application they were folded into, so future
// thread-id lookups on old threads redirect to the surviving application.
type MergedTracker struct {
	filePath string
	data     mergedFile
}

type mergedFile struct {
	MergedThreadIDs map[string]string `json:"merged_thread_ids"`
	MergeHistory    []MergeRecord     `json:"merge_history"`
}

// NewMergedTracker loads the merged-thread redirection map from path.
func NewMergedTracker(path string) *MergedTracker {
	t := &MergedTracker{
		filePath: path,
		data: mergedFile{
			MergedThreadIDs: make(map[string]string),
		},
	}
	t.load()
	return t
}

func (t *MergedTracker) load() {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		return
	}

	var f mergedFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("[Track] could not load merged applications file: %v", err)
		return
	}
	if f.MergedThreadIDs == nil {
		f.MergedThreadIDs = make(map[string]string)
	}

	t.data = f
	if len(f.MergedThreadIDs) > 0 {
		log.Printf("[Track] loaded %d merged thread id mapping(s)", len(f.MergedThreadIDs))
	}
}

func (t *MergedTracker) save() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		log.Printf("[Track] could not save merged applications file: %v", err)
		return errors.Join(ErrTrackerSave, err)
	}
	return nil
}

// RecordMerge maps every source thread id to the target's comma-joined
// thread id set and appends an audit entry.
func (t *MergedTracker) RecordMerge(sourceThreadIDs []string, targetThreadIDs string, record MergeRecord) {
	for _, id := range sourceThreadIDs {
		if id != "" {
			t.data.MergedThreadIDs[id] = targetThreadIDs
		}
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	t.data.MergeHistory = append(t.data.MergeHistory, record)

	t.save()
}

// Redirect returns the comma-joined target thread ids a merged-away thread
// id now points to, or "" if the thread was never merged.
func (t *MergedTracker) Redirect(threadID string) string {
	return t.data.MergedThreadIDs[threadID]
}

// Stats returns the number of redirections and recorded merges.
func (t *MergedTracker) Stats() (redirections, merges int) {
	return len(t.data.MergedThreadIDs), len(t.data.MergeHistory)
}

// Reset clears the tracker and persists the empty map.
func (t *MergedTracker) Reset() error {
	t.data = mergedFile{MergedThreadIDs: make(map[string]string)}
	return t.save()
}
