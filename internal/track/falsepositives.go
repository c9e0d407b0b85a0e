package track

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
)

// FalsePositivesTracker tracks messages and company/position combinations
// the user has rejected, typically by deleting a created record out of
// band. CreateApplication consults this before insertion so a rejected
// application is never recreated.
type FalsePositivesTracker struct {
	filePath string
	data     falsePositivesFile
}

type falsePositivesFile struct {
	MessageIDs []string            `json:"message_ids"`
	Companies  map[string][]string `json:"companies"`
}

// NewFalsePositivesTracker loads the false-positive sets from path.
func NewFalsePositivesTracker(path string) *FalsePositivesTracker {
	t := &FalsePositivesTracker{
		filePath: path,
		data: falsePositivesFile{
			Companies: make(map[string][]string),
		},
	}
	t.load()
	return t
}

func (t *FalsePositivesTracker) load() {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		return
	}

	var f falsePositivesFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("[Track] could not load false positives file: %v", err)
		return
	}
	if f.Companies == nil {
		f.Companies = make(map[string][]string)
	}

	t.data = f
	if len(f.MessageIDs) > 0 {
		log.Printf("[Track] loaded %d false positive message id(s)", len(f.MessageIDs))
	}
}

func (t *FalsePositivesTracker) save() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		log.Printf("[Track] could not save false positives file: %v", err)
		return errors.Join(ErrTrackerSave, err)
	}
	return nil
}

// IsFalsePositive reports whether the message id or the company/position
// combination was previously rejected by the user.
func (t *FalsePositivesTracker) IsFalsePositive(messageID, company, position string) bool {
	for _, id := range t.data.MessageIDs {
		if id == messageID {
			return true
		}
	}

	positions, ok := t.data.Companies[strings.ToLower(company)]
	if !ok {
		return false
	}

	positionLower := strings.ToLower(position)
	for _, p := range positions {
		if p == positionLower {
			return true
		}
	}
	return false
}

// Add marks a message and its company/position combination as a false
// positive and persists the tracker.
func (t *FalsePositivesTracker) Add(messageID, company, position string) {
	found := false
	for _, id := range t.data.MessageIDs {
		if id == messageID {
			found = true
			break
		}
	}
	if !found {
		t.data.MessageIDs = append(t.data.MessageIDs, messageID)
	}

	companyLower := strings.ToLower(company)
	positionLower := strings.ToLower(position)

	positions := t.data.Companies[companyLower]
	for _, p := range positions {
		if p == positionLower {
			t.save()
			return
		}
	}
	t.data.Companies[companyLower] = append(positions, positionLower)

	t.save()
	log.Printf("[Track] recorded false positive: %s - %s", company, position)
}

// Stats returns counts of tracked false positives.
func (t *FalsePositivesTracker) Stats() (messageIDs, combinations int) {
	for _, positions := range t.data.Companies {
		combinations += len(positions)
	}
	return len(t.data.MessageIDs), combinations
}

// Reset clears the tracker and persists the empty sets.
func (t *FalsePositivesTracker) Reset() error {
	t.data = falsePositivesFile{Companies: make(map[string][]string)}
	return t.save()
}
