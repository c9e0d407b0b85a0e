// Package merge consolidates applications flagged for merging: it
// validates the merge graph, folds source fields into the target
// deterministically and removes the source from the backing store.
package merge

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/store"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// ErrInvalidMerge indicates a merge request failed validation
var ErrInvalidMerge = errors.New("invalid merge request")

// Pair is one validated (source, target) merge request.
type Pair struct {
	Source *models.Application
	Target *models.Application
}

// Engine finds and executes merge requests over the full application set.
type Engine struct {
	store   store.RecordStore
	tracker *track.MergedTracker
}

// NewEngine creates a merge Engine.
func NewEngine(recordStore store.RecordStore, tracker *track.MergedTracker) *Engine {
	return &Engine{store: recordStore, tracker: tracker}
}

// FindMergeRequests collects all applications carrying a merge target and
// validates each pair. Invalid requests are skipped with a warning.
func (e *Engine) FindMergeRequests(applications []*models.Application) []Pair {
	var pairs []Pair

	for _, app := range applications {
		if strings.TrimSpace(app.MergeIntoRow) == "" {
			continue
		}

		targetRow, err := strconv.Atoi(strings.TrimSpace(app.MergeIntoRow))
		if err != nil {
			log.Printf("[Merge] invalid merge target %q for row %d, skipping",
				app.MergeIntoRow, app.RowNumber)
			continue
		}

		var target *models.Application
		for _, candidate := range applications {
			if candidate.RowNumber == targetRow {
				target = candidate
				break
			}
		}
		if target == nil {
			log.Printf("[Merge] merge target row %d not found for row %d, skipping",
				targetRow, app.RowNumber)
			continue
		}

		if err := validate(app, target); err != nil {
			log.Printf("[Merge] %v, skipping", err)
			continue
		}

		pairs = append(pairs, Pair{Source: app, Target: target})
	}

	return pairs
}

// validate rejects self, circular and chain merges.
func validate(source, target *models.Application) error {
	if source.RowNumber == target.RowNumber {
		return fmt.Errorf("%w: row %d cannot merge into itself", ErrInvalidMerge, source.RowNumber)
	}

	targetMerge := strings.TrimSpace(target.MergeIntoRow)
	if targetMerge == "" {
		return nil
	}

	if targetRow, err := strconv.Atoi(targetMerge); err == nil && targetRow == source.RowNumber {
		return fmt.Errorf("%w: circular merge between row %d and row %d",
			ErrInvalidMerge, source.RowNumber, target.RowNumber)
	}

	// Target has its own pending merge, resolve that one first
	return fmt.Errorf("%w: chain merge row %d -> row %d -> row %s",
		ErrInvalidMerge, source.RowNumber, target.RowNumber, targetMerge)
}

// Fold consolidates source's fields into target deterministically and
// returns the updated target. The source record itself is untouched here;
// deletion happens in ExecuteMerges.
func Fold(source, target *models.Application) *models.Application {
	log.Printf("[Merge] %s (row %d) -> %s (row %d)",
		source.Company, source.RowNumber, target.Company, target.RowNumber)

	// Earliest application date wins
	if source.ApplicationDate.Before(target.ApplicationDate) {
		target.ApplicationDate = source.ApplicationDate
	}

	// Most progressed status, terminal outranking non-terminal
	target.CurrentStatus = models.MostProgressed(source.CurrentStatus, target.CurrentStatus)

	target.EmailCount += source.EmailCount

	// Latest email date (null safe) and the link belonging to it
	sourceLater := source.LatestEmailDate != nil &&
		(target.LatestEmailDate == nil || source.LatestEmailDate.After(*target.LatestEmailDate))
	if sourceLater {
		target.LatestEmailDate = source.LatestEmailDate
		if source.GmailLink != "" {
			target.GmailLink = source.GmailLink
		}
	} else if target.GmailLink == "" && source.GmailLink != "" {
		target.GmailLink = source.GmailLink
	}

	switch {
	case source.Notes != "" && target.Notes != "":
		target.Notes = target.Notes + " | " + source.Notes
	case source.Notes != "":
		target.Notes = source.Notes
	}

	for _, threadID := range source.ThreadIDs() {
		target.AddThreadID(threadID)
	}

	target.LastUpdated = time.Now()
	target.MergeIntoRow = ""

	return target
}

// ExecuteMerges finds and executes all valid merges, returning the
// reloaded application set and the number of merges performed. In dry-run
// mode the plan is previewed without touching storage or the tracker.
func (e *Engine) ExecuteMerges(applications []*models.Application, dryRun bool) ([]*models.Application, int, error) {
	pairs := e.FindMergeRequests(applications)
	if len(pairs) == 0 {
		return applications, 0, nil
	}

	log.Printf("[Merge] found %d merge request(s)", len(pairs))

	if dryRun {
		for _, p := range pairs {
			log.Printf("[Merge] would merge row %d (%s) -> row %d (%s)",
				p.Source.RowNumber, p.Source.Company, p.Target.RowNumber, p.Target.Company)
		}
		return applications, len(pairs), nil
	}

	// Descending source row order so the deletion pass, run after all
	// target updates, never shifts a pending source row
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Source.RowNumber > pairs[j].Source.RowNumber
	})

	for _, p := range pairs {
		Fold(p.Source, p.Target)
	}

	// Persist every target update before deleting anything: a deletion
	// above a still-pending target would shift its row out from under
	// the update.
	updated := make(map[int]bool)
	for _, p := range pairs {
		if _, seen := updated[p.Target.RowNumber]; seen {
			continue
		}
		if err := e.store.Update(p.Target.RowNumber, p.Target.ToRow()); err != nil {
			log.Printf("[Merge] failed to update target row %d: %v", p.Target.RowNumber, err)
			updated[p.Target.RowNumber] = false
			continue
		}
		updated[p.Target.RowNumber] = true
	}

	merged := 0
	for _, p := range pairs {
		if !updated[p.Target.RowNumber] {
			continue
		}
		if err := e.store.Delete(p.Source.RowNumber); err != nil {
			log.Printf("[Merge] failed to delete source row %d: %v", p.Source.RowNumber, err)
			continue
		}

		// Only a fully persisted merge is recorded, so the thread
		// redirection map never points at a merge that did not happen.
		e.tracker.RecordMerge(p.Source.ThreadIDs(), p.Target.ThreadID, track.MergeRecord{
			SourceRow:     p.Source.RowNumber,
			TargetRow:     p.Target.RowNumber,
			SourceCompany: p.Source.Company,
			TargetCompany: p.Target.Company,
		})

		merged++
	}

	log.Printf("[Merge] completed %d merge(s)", merged)

	// Reload the authoritative application set
	reloaded, err := e.reload()
	if err != nil {
		return applications, merged, err
	}
	return reloaded, merged, nil
}

func (e *Engine) reload() ([]*models.Application, error) {
	rows, err := e.store.ReadAll()
	if err != nil {
		return nil, err
	}

	apps := make([]*models.Application, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		apps = append(apps, models.ApplicationFromRow(row, store.FirstDataRow+i))
	}
	return apps, nil
}
