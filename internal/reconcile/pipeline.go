package reconcile

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/tyagiprnv/Job-Tracker/internal/database"
	dbmodels "github.com/tyagiprnv/Job-Tracker/internal/database/models"
	"github.com/tyagiprnv/Job-Tracker/internal/match"
	"github.com/tyagiprnv/Job-Tracker/internal/merge"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
)

// Summary reports what one pipeline run did.
type Summary struct {
	RunID   string `json:"run_id"`
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Merged  int    `json:"merged"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	DryRun  bool   `json:"dry_run"`
}

// Pipeline runs a full reconciliation pass: merge requests first, then
// every classified email in chronological order through match and
// create-or-update. One failing email never aborts the run.
type Pipeline struct {
	manager *Manager
	matcher *match.Matcher
	merger  *merge.Engine
	audit   *database.AuditLogger
	dryRun  bool
}

// NewPipeline creates a Pipeline. audit may be nil.
func NewPipeline(manager *Manager, matcher *match.Matcher, merger *merge.Engine,
	audit *database.AuditLogger, dryRun bool) *Pipeline {
	return &Pipeline{
		manager: manager,
		matcher: matcher,
		merger:  merger,
		audit:   audit,
		dryRun:  dryRun,
	}
}

// Run processes a batch of classified emails and returns the run summary.
func (p *Pipeline) Run(emails []*models.Email) (*Summary, error) {
	summary := &Summary{Total: len(emails), DryRun: p.dryRun}
	if p.audit != nil {
		summary.RunID = p.audit.RunID()
	}

	applications, err := p.manager.GetAllApplications()
	if err != nil {
		return summary, fmt.Errorf("loading applications: %w", err)
	}

	// Operator merge requests run before any email mutates the rows
	// they reference.
	applications, merged, err := p.merger.ExecuteMerges(applications, p.dryRun)
	if err != nil {
		log.Printf("[Pipeline] merge pass failed: %v", err)
		p.auditError("merge", fmt.Sprintf("merge pass failed: %v", err), nil)
	}
	summary.Merged = merged
	if merged > 0 {
		p.auditInfo(dbmodels.LogModuleMerge, "merge_pass",
			fmt.Sprintf("merged %d applications", merged), nil)
	}

	// Oldest first, so status progression sees emails in real order
	ordered := make([]*models.Email, len(emails))
	copy(ordered, emails)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	for _, email := range ordered {
		created, err := p.processOne(email, applications)
		switch {
		case err == nil && created != nil:
			summary.Created++
			applications = append(applications, created)
		case err == nil:
			summary.Updated++
			// Row handles may shift after conflict resolution; reload
			// so later emails match against current state.
			if applications, err = p.manager.GetAllApplications(); err != nil {
				return summary, fmt.Errorf("reloading applications: %w", err)
			}
		case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrFalsePositive),
			errors.Is(err, ErrApplicationVanished):
			summary.Skipped++
		default:
			summary.Failed++
			log.Printf("[Pipeline] failed to process %s: %v", email.MessageID, err)
			p.auditError("process_email", err.Error(),
				map[string]any{"message_id": email.MessageID})
		}
	}

	p.auditInfo(dbmodels.LogModuleReconcile, "run_complete",
		fmt.Sprintf("created=%d updated=%d merged=%d skipped=%d failed=%d",
			summary.Created, summary.Updated, summary.Merged, summary.Skipped, summary.Failed),
		nil)
	log.Printf("[Pipeline] run complete: %d created, %d updated, %d merged, %d skipped, %d failed",
		summary.Created, summary.Updated, summary.Merged, summary.Skipped, summary.Failed)

	return summary, nil
}

// processOne matches one email and applies the create-or-update. Returns
// the new application when one was created, nil on update.
func (p *Pipeline) processOne(email *models.Email, applications []*models.Application) (*models.Application, error) {
	matched, confidence := p.matcher.FindMatch(email, applications)

	if p.dryRun {
		if matched != nil {
			log.Printf("[Pipeline] dry run: would update %s - %s (confidence %d)",
				matched.Company, matched.Position, confidence)
		} else {
			log.Printf("[Pipeline] dry run: would create %s - %s",
				email.CompanyOrUnknown(), email.PositionOrUnknown())
		}
		return nil, ErrAlreadyProcessed
	}

	if matched != nil {
		p.auditInfo(dbmodels.LogModuleMatch, "matched",
			fmt.Sprintf("%s - %s", matched.Company, matched.Position),
			map[string]any{"confidence": confidence, "message_id": email.MessageID})
		return nil, p.manager.UpdateApplication(matched, email)
	}

	return p.manager.CreateApplication(email)
}

func (p *Pipeline) auditInfo(module dbmodels.LogModule, action, message string, details map[string]any) {
	if p.audit != nil {
		p.audit.Info(module, action, message, details)
	}
}

func (p *Pipeline) auditError(action, message string, details map[string]any) {
	if p.audit != nil {
		p.audit.Error(dbmodels.LogModuleReconcile, action, message, details)
	}
}
