// Package reconcile orchestrates batch reconciliation: it loads the
// persisted application set, runs the merge pass, matches classified
// emails to applications and applies create-or-update with conflict
// resolution, status gating and idempotency tracking.
package reconcile

import (
	"errors"
	"log"
	"strings"

	"github.com/tyagiprnv/Job-Tracker/internal/conflict"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/store"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

var (
	// ErrAlreadyProcessed indicates the message id was already folded in
	ErrAlreadyProcessed = errors.New("email already processed")
	// ErrFalsePositive indicates the application was previously rejected
	ErrFalsePositive = errors.New("known false positive")
	// ErrApplicationVanished indicates the application disappeared from
	// the store between read and write
	ErrApplicationVanished = errors.New("application no longer in store")
)

// Manager owns create-or-update of applications against the record store.
type Manager struct {
	store          store.RecordStore
	processed      *track.ProcessedTracker
	falsePositives *track.FalsePositivesTracker
	resolver       *conflict.Resolver
}

// NewManager creates a Manager.
func NewManager(recordStore store.RecordStore, processed *track.ProcessedTracker,
	falsePositives *track.FalsePositivesTracker, resolver *conflict.Resolver) *Manager {
	return &Manager{
		store:          recordStore,
		processed:      processed,
		falsePositives: falsePositives,
		resolver:       resolver,
	}
}

// GetAllApplications reads and parses the full application set. Rows with
// an empty company cell are skipped; damaged rows parse with safe
// defaults rather than failing the load.
func (m *Manager) GetAllApplications() ([]*models.Application, error) {
	rows, err := m.store.ReadAll()
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

// CreateApplication creates a new application from a classified email.
// Known false positives and already processed messages are refused; a
// successful create marks the message processed exactly once.
func (m *Manager) CreateApplication(email *models.Email) (*models.Application, error) {
	if m.processed.IsProcessed(email.MessageID) {
		log.Printf("[Reconcile] skipping already processed email: %s - %s",
			email.CompanyOrUnknown(), email.PositionOrUnknown())
		return nil, ErrAlreadyProcessed
	}

	if m.falsePositives.IsFalsePositive(email.MessageID, email.CompanyOrUnknown(), email.PositionOrUnknown()) {
		log.Printf("[Reconcile] skipping false positive: %s - %s (previously rejected)",
			email.CompanyOrUnknown(), email.PositionOrUnknown())
		return nil, ErrFalsePositive
	}

	date := email.Date
	app := &models.Application{
		Company:         email.CompanyOrUnknown(),
		Position:        email.PositionOrUnknown(),
		ApplicationDate: date,
		CurrentStatus:   email.StatusOrApplied(),
		LastUpdated:     date,
		EmailCount:      1,
		LatestEmailDate: &date,
		GmailLink:       email.GmailLink,
		ThreadID:        email.ThreadID,
	}

	if err := m.store.Append(app.ToRow()); err != nil {
		return nil, err
	}

	m.processed.MarkProcessed(email.MessageID)
	log.Printf("[Reconcile] created: %s - %s", app.Company, app.Position)

	return app, nil
}

// UpdateApplication folds a matched email into an existing application.
// The application is re-identified in the current store state before any
// mutation; if it vanished the email is recorded as a false positive and
// marked processed so it is never recreated.
func (m *Manager) UpdateApplication(app *models.Application, email *models.Email) error {
	if m.processed.IsProcessed(email.MessageID) {
		log.Printf("[Reconcile] skipping already processed email for %s - %s",
			app.Company, app.Position)
		return ErrAlreadyProcessed
	}

	current, err := m.findByIdentity(app)
	if err != nil {
		return err
	}
	if current == nil {
		log.Printf("[Reconcile] %s - %s was deleted out of band, recording as false positive",
			app.Company, app.Position)
		m.falsePositives.Add(email.MessageID, app.Company, app.Position)
		m.processed.MarkProcessed(email.MessageID)
		return ErrApplicationVanished
	}

	// Field conflicts first: the resolver may redirect to a new entry
	conflicts := conflict.Detect(current, email)
	resolution := m.resolver.Resolve(current, email, conflicts)
	if resolution.CreateNewEntry {
		_, err := m.CreateApplication(email)
		return err
	}
	current.Company = resolution.Company
	current.Position = resolution.Position

	// Application date only ever moves earlier
	if email.Date.Before(current.ApplicationDate) {
		current.ApplicationDate = email.Date
	}

	// Gate the status transition; metadata updates regardless
	proposed := email.StatusOrApplied()
	if models.AllowTransition(current.CurrentStatus, proposed) {
		if current.CurrentStatus != proposed {
			log.Printf("[Reconcile] status for %s: %s -> %s",
				current.Company, current.CurrentStatus, proposed)
		}
		current.CurrentStatus = proposed
	} else if current.CurrentStatus.IsTerminal() {
		log.Printf("[Reconcile] preserving terminal status %s for %s (not updating to %s)",
			current.CurrentStatus, current.Company, proposed)
	} else {
		log.Printf("[Reconcile] preserving status %s for %s (would downgrade to %s)",
			current.CurrentStatus, current.Company, proposed)
	}

	current.EmailCount++
	if current.LatestEmailDate == nil || email.Date.After(*current.LatestEmailDate) {
		date := email.Date
		current.LatestEmailDate = &date
	}
	current.LastUpdated = email.Date
	if email.GmailLink != "" {
		current.GmailLink = email.GmailLink
	}
	current.AddThreadID(email.ThreadID)

	if err := m.store.Update(current.RowNumber, current.ToRow()); err != nil {
		return err
	}

	m.processed.MarkProcessed(email.MessageID)
	log.Printf("[Reconcile] updated: %s - %s -> %s",
		current.Company, current.Position, current.CurrentStatus)

	return nil
}

// findByIdentity re-locates an application in the current store state by
// thread id first, then by normalized company and position, refreshing
// its row handle. Returns nil when the application is gone.
func (m *Manager) findByIdentity(app *models.Application) (*models.Application, error) {
	currentApps, err := m.GetAllApplications()
	if err != nil {
		return nil, err
	}

	if ids := app.ThreadIDs(); len(ids) > 0 {
		for _, candidate := range currentApps {
			for _, candidateID := range candidate.ThreadIDs() {
				for _, id := range ids {
					if candidateID == id {
						return candidate, nil
					}
				}
			}
		}
	}

	company := strings.ToLower(app.Company)
	position := strings.ToLower(app.Position)
	for _, candidate := range currentApps {
		if strings.ToLower(candidate.Company) == company &&
			strings.ToLower(candidate.Position) == position {
			return candidate, nil
		}
	}

	return nil, nil
}
