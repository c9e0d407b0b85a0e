package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tyagiprnv/Job-Tracker/internal/textutil"
)

// Resolution kinds recorded in the memo.
const (
	ResolutionKeepStored  = "keep_stored"
	ResolutionUseIncoming = "use_incoming"
	ResolutionManual      = "manual"
)

// Resolution is one remembered conflict decision.
type Resolution struct {
	FieldName     string `json:"field_name"`
	StoredValue   string `json:"stored_value"`
	IncomingValue string `json:"incoming_value"`
	ChosenValue   string `json:"chosen_value"`
	Kind          string `json:"resolution_kind"`
}

// ResolutionTracker is a persistent memo mapping a normalized
// (field, stored, incoming) triple to a previously chosen outcome, so a
// repeated identical conflict pattern resolves without re-asking.
type ResolutionTracker struct {
	filePath string
	data     resolutionsFile
}

type resolutionsFile struct {
	Resolutions map[string]Resolution `json:"resolutions"`
}

// NewResolutionTracker loads the resolution memo from path.
func NewResolutionTracker(path string) *ResolutionTracker {
	t := &ResolutionTracker{
		filePath: path,
		data: resolutionsFile{
			Resolutions: make(map[string]Resolution),
		},
	}
	t.load()
	return t
}

func (t *ResolutionTracker) load() {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		return
	}

	var f resolutionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("[Track] could not load conflict resolutions file: %v", err)
		return
	}
	if f.Resolutions == nil {
		f.Resolutions = make(map[string]Resolution)
	}

	t.data = f
	if len(f.Resolutions) > 0 {
		log.Printf("[Track] loaded %d conflict resolution(s)", len(f.Resolutions))
	}
}

func (t *ResolutionTracker) save() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		log.Printf("[Track] could not save conflict resolutions file: %v", err)
		return errors.Join(ErrTrackerSave, err)
	}
	return nil
}

// makeKey builds the normalized lookup key so repeated conflicts that
// differ only in casing or spacing hit the same memo entry.
func makeKey(fieldName, storedValue, incomingValue string) string {
	return fmt.Sprintf("%s:%s:%s",
		strings.ToLower(fieldName),
		textutil.NormalizeText(storedValue),
		textutil.NormalizeText(incomingValue),
	)
}

// Find returns the remembered resolution for a conflict pattern, or nil.
func (t *ResolutionTracker) Find(fieldName, storedValue, incomingValue string) *Resolution {
	if r, ok := t.data.Resolutions[makeKey(fieldName, storedValue, incomingValue)]; ok {
		return &r
	}
	return nil
}

// Save records a resolution for a conflict pattern and persists the memo.
func (t *ResolutionTracker) Save(fieldName, storedValue, incomingValue, chosenValue, kind string) {
	t.data.Resolutions[makeKey(fieldName, storedValue, incomingValue)] = Resolution{
		FieldName:     fieldName,
		StoredValue:   storedValue,
		IncomingValue: incomingValue,
		ChosenValue:   chosenValue,
		Kind:          kind,
	}

	t.save()
	log.Printf("[Track] saved resolution: %s '%s' vs '%s' -> '%s'",
		fieldName, storedValue, incomingValue, chosenValue)
}

// Count returns the number of remembered resolutions.
func (t *ResolutionTracker) Count() int {
	return len(t.data.Resolutions)
}

// Reset clears the memo and persists the empty map.
func (t *ResolutionTracker) Reset() error {
	t.data = resolutionsFile{Resolutions: make(map[string]Resolution)}
	return t.save()
}
