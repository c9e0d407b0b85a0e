// Package track holds the persisted tracker stores used by the
// reconciliation pipeline: the processed-message set, the false-positive
// set, the merged-thread redirection map and the conflict resolution memo.
//
// Every tracker is a single JSON document read wholesale at startup and
// rewritten wholesale on each mutation. Single-writer access per run is
// assumed; there is no file locking.
package track

import (
	"encoding/json"
	"errors"
	"log"
	"os"
)

var (
	// ErrTrackerSave indicates the tracker file could not be written
	ErrTrackerSave = errors.New("tracker save failed")
)

// ProcessedTracker tracks which message ids have already been folded into
// an application so a re-delivered message is a no-op.
type ProcessedTracker struct {
	filePath string
	ids      map[string]bool
}

type processedFile struct {
	MessageIDs []string `json:"message_ids"`
}

// NewProcessedTracker loads the processed-message set from path. A missing
// or corrupt file yields an empty tracker.
func NewProcessedTracker(path string) *ProcessedTracker {
	t := &ProcessedTracker{
		filePath: path,
		ids:      make(map[string]bool),
	}
	t.load()
	return t
}

func (t *ProcessedTracker) load() {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		return
	}

	var f processedFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("[Track] could not load processed emails file: %v", err)
		return
	}

	for _, id := range f.MessageIDs {
		t.ids[id] = true
	}
	if len(t.ids) > 0 {
		log.Printf("[Track] loaded %d processed email id(s)", len(t.ids))
	}
}

func (t *ProcessedTracker) save() error {
	f := processedFile{MessageIDs: make([]string, 0, len(t.ids))}
	for id := range t.ids {
		f.MessageIDs = append(f.MessageIDs, id)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		log.Printf("[Track] could not save processed emails file: %v", err)
		return errors.Join(ErrTrackerSave, err)
	}
	return nil
}

// IsProcessed reports whether the message id has already been processed.
func (t *ProcessedTracker) IsProcessed(messageID string) bool {
	return t.ids[messageID]
}

// MarkProcessed marks the message id as processed and persists the set.
func (t *ProcessedTracker) MarkProcessed(messageID string) {
	if t.ids[messageID] {
		return
	}
	t.ids[messageID] = true
	_ = t.save()
}

// Count returns the number of processed message ids.
func (t *ProcessedTracker) Count() int {
	return len(t.ids)
}

// Reset clears the tracker and persists the empty set.
func (t *ProcessedTracker) Reset() error {
	t.ids = make(map[string]bool)
	return t.save()
}
