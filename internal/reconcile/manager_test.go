package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tyagiprnv/Job-Tracker/internal/conflict"
	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/store"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// fakeStore is an in-memory RecordStore keeping rows in order.
type fakeStore struct {
	rows [][]string
}

func (s *fakeStore) ReadAll() ([][]string, error) { return s.rows, nil }

func (s *fakeStore) Append(row []string) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *fakeStore) AppendMany(rows [][]string) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *fakeStore) Update(rowNumber int, row []string) error {
	idx := rowNumber - store.FirstDataRow
	if idx < 0 || idx >= len(s.rows) {
		return store.ErrRowNotFound
	}
	s.rows[idx] = row
	return nil
}

func (s *fakeStore) Delete(rowNumber int) error {
	idx := rowNumber - store.FirstDataRow
	if idx < 0 || idx >= len(s.rows) {
		return store.ErrRowNotFound
	}
	s.rows = append(s.rows[:idx], s.rows[idx+1:]...)
	return nil
}

func (s *fakeStore) Find(column int, value string) (int, error) {
	for i, row := range s.rows {
		if column < len(row) && row[column] == value {
			return store.FirstDataRow + i, nil
		}
	}
	return 0, store.ErrRowNotFound
}

type fixture struct {
	store          *fakeStore
	processed      *track.ProcessedTracker
	falsePositives *track.FalsePositivesTracker
	manager        *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	s := &fakeStore{}
	processed := track.NewProcessedTracker(filepath.Join(dir, "processed.json"))
	falsePositives := track.NewFalsePositivesTracker(filepath.Join(dir, "fp.json"))
	resolver := conflict.NewResolver(false, &conflict.StaticProvider{},
		track.NewResolutionTracker(filepath.Join(dir, "resolutions.json")))

	return &fixture{
		store:          s,
		processed:      processed,
		falsePositives: falsePositives,
		manager:        NewManager(s, processed, falsePositives, resolver),
	}
}

func classifiedEmail(messageID string, opts ...func(*models.Email)) *models.Email {
	e := &models.Email{
		MessageID: messageID,
		ThreadID:  "thread-" + messageID,
		Company:   "Google",
		Position:  "Software Engineer",
		Status:    models.StatusApplied,
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func TestGetAllApplicationsSkipsEmptyRows(t *testing.T) {
	f := newFixture(t)
	f.store.rows = [][]string{
		{"Google", "Software Engineer", "2024-03-01", "Applied", "2024-03-01", "1", "", "", "", "", ""},
		{},
		{"", "Orphan Position"},
		{"Stripe", "Platform Engineer", "2024-03-02", "Applied", "2024-03-02", "1", "", "", "", "", ""},
	}

	apps, err := f.manager.GetAllApplications()
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}
	if apps[0].RowNumber != 2 || apps[1].RowNumber != 5 {
		t.Errorf("row numbers = %d, %d; want 2, 5", apps[0].RowNumber, apps[1].RowNumber)
	}
}

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)
	email := classifiedEmail("m1", func(e *models.Email) {
		e.GmailLink = "https://mail.google.com/x"
	})

	app, err := f.manager.CreateApplication(email)
	if err != nil {
		t.Fatal(err)
	}

	if app.Company != "Google" || app.Position != "Software Engineer" {
		t.Errorf("unexpected application: %+v", app)
	}
	if app.EmailCount != 1 {
		t.Errorf("EmailCount = %d, want 1", app.EmailCount)
	}
	if app.LatestEmailDate == nil || !app.LatestEmailDate.Equal(email.Date) {
		t.Errorf("LatestEmailDate = %v", app.LatestEmailDate)
	}
	if app.ThreadID != "thread-m1" {
		t.Errorf("ThreadID = %q", app.ThreadID)
	}
	if len(f.store.rows) != 1 {
		t.Errorf("store rows = %d, want 1", len(f.store.rows))
	}
	if !f.processed.IsProcessed("m1") {
		t.Error("message not marked processed")
	}
}

func TestCreateApplicationUnknownFallbacks(t *testing.T) {
	f := newFixture(t)
	email := classifiedEmail("m1", func(e *models.Email) {
		e.Company = ""
		e.Position = ""
		e.Status = ""
	})

	app, err := f.manager.CreateApplication(email)
	if err != nil {
		t.Fatal(err)
	}
	if app.Company != models.UnknownCompany || app.Position != models.UnknownPosition {
		t.Errorf("sentinels not applied: %+v", app)
	}
	if app.CurrentStatus != models.StatusApplied {
		t.Errorf("CurrentStatus = %q, want Applied", app.CurrentStatus)
	}
}

func TestCreateApplicationSkipsProcessed(t *testing.T) {
	f := newFixture(t)
	f.processed.MarkProcessed("m1")

	if _, err := f.manager.CreateApplication(classifiedEmail("m1")); err != ErrAlreadyProcessed {
		t.Errorf("err = %v, want ErrAlreadyProcessed", err)
	}
	if len(f.store.rows) != 0 {
		t.Error("skipped create must not append")
	}
}

func TestCreateApplicationSkipsFalsePositive(t *testing.T) {
	f := newFixture(t)
	f.falsePositives.Add("other", "Google", "Software Engineer")

	if _, err := f.manager.CreateApplication(classifiedEmail("m1")); err != ErrFalsePositive {
		t.Errorf("err = %v, want ErrFalsePositive", err)
	}
	if len(f.store.rows) != 0 {
		t.Error("rejected application must not be recreated")
	}
}

func TestUpdateApplication(t *testing.T) {
	f := newFixture(t)
	existing := &models.Application{
		Company:         "Google",
		Position:        "Software Engineer",
		ApplicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentStatus:   models.StatusApplied,
		LastUpdated:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EmailCount:      1,
		ThreadID:        "thread-m1",
		RowNumber:       2,
	}
	f.store.rows = [][]string{existing.ToRow()}

	email := classifiedEmail("m2", func(e *models.Email) {
		e.ThreadID = "thread-m2"
		e.Status = models.StatusInterviewScheduled
		e.GmailLink = "https://mail.google.com/y"
	})

	if err := f.manager.UpdateApplication(existing, email); err != nil {
		t.Fatal(err)
	}

	apps, _ := f.manager.GetAllApplications()
	got := apps[0]
	if got.CurrentStatus != models.StatusInterviewScheduled {
		t.Errorf("CurrentStatus = %q", got.CurrentStatus)
	}
	if got.EmailCount != 2 {
		t.Errorf("EmailCount = %d, want 2", got.EmailCount)
	}
	if got.LatestEmailDate == nil || !got.LatestEmailDate.Equal(email.Date) {
		t.Errorf("LatestEmailDate = %v", got.LatestEmailDate)
	}
	if !got.LastUpdated.Equal(email.Date) {
		t.Errorf("LastUpdated = %v", got.LastUpdated)
	}
	if got.GmailLink != "https://mail.google.com/y" {
		t.Errorf("GmailLink = %q", got.GmailLink)
	}
	if got.ThreadID != "thread-m1,thread-m2" {
		t.Errorf("ThreadID = %q", got.ThreadID)
	}
	if !f.processed.IsProcessed("m2") {
		t.Error("message not marked processed")
	}
}

func TestUpdateApplicationEarliestDateWins(t *testing.T) {
	f := newFixture(t)
	existing := &models.Application{
		Company:         "Google",
		Position:        "Software Engineer",
		ApplicationDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CurrentStatus:   models.StatusUnderReview,
		LastUpdated:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		EmailCount:      1,
		ThreadID:        "thread-m1",
		RowNumber:       2,
	}
	f.store.rows = [][]string{existing.ToRow()}

	earlier := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	email := classifiedEmail("m2", func(e *models.Email) {
		e.ThreadID = "thread-m1"
		e.Date = earlier
		e.Status = models.StatusApplied
	})

	if err := f.manager.UpdateApplication(existing, email); err != nil {
		t.Fatal(err)
	}

	apps, _ := f.manager.GetAllApplications()
	if !apps[0].ApplicationDate.Equal(earlier) {
		t.Errorf("ApplicationDate = %v, want moved earlier to %v", apps[0].ApplicationDate, earlier)
	}
	// Applied is behind Under Review, status must not regress.
	if apps[0].CurrentStatus != models.StatusUnderReview {
		t.Errorf("CurrentStatus = %q, want preserved", apps[0].CurrentStatus)
	}
}

func TestUpdateApplicationTerminalStatusFrozen(t *testing.T) {
	f := newFixture(t)
	existing := &models.Application{
		Company:         "Google",
		Position:        "Software Engineer",
		ApplicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentStatus:   models.StatusRejected,
		LastUpdated:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		EmailCount:      2,
		ThreadID:        "thread-m1",
		RowNumber:       2,
	}
	f.store.rows = [][]string{existing.ToRow()}

	email := classifiedEmail("m2", func(e *models.Email) {
		e.ThreadID = "thread-m1"
		e.Status = models.StatusInterviewScheduled
	})

	if err := f.manager.UpdateApplication(existing, email); err != nil {
		t.Fatal(err)
	}

	apps, _ := f.manager.GetAllApplications()
	if apps[0].CurrentStatus != models.StatusRejected {
		t.Errorf("CurrentStatus = %q, terminal status must not change", apps[0].CurrentStatus)
	}
	// Metadata still updates under a frozen status.
	if apps[0].EmailCount != 3 {
		t.Errorf("EmailCount = %d, want 3", apps[0].EmailCount)
	}
}

func TestUpdateApplicationVanished(t *testing.T) {
	f := newFixture(t)
	ghost := &models.Application{
		Company:   "Google",
		Position:  "Software Engineer",
		ThreadID:  "thread-m1",
		RowNumber: 2,
	}

	email := classifiedEmail("m2")
	err := f.manager.UpdateApplication(ghost, email)
	if err != ErrApplicationVanished {
		t.Fatalf("err = %v, want ErrApplicationVanished", err)
	}

	if !f.processed.IsProcessed("m2") {
		t.Error("vanished update must mark the message processed")
	}
	if !f.falsePositives.IsFalsePositive("m2", "Google", "Software Engineer") {
		t.Error("vanished update must record a false positive")
	}

	// The very email that found it gone must never recreate it.
	if _, err := f.manager.CreateApplication(email); err != ErrAlreadyProcessed {
		t.Errorf("recreate err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestUpdateApplicationRelocatesByThreadID(t *testing.T) {
	f := newFixture(t)
	moved := &models.Application{
		Company:         "Google",
		Position:        "Software Engineer",
		ApplicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentStatus:   models.StatusApplied,
		LastUpdated:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EmailCount:      1,
		ThreadID:        "thread-m1",
	}
	filler := &models.Application{
		Company:         "Stripe",
		Position:        "Platform Engineer",
		ApplicationDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		CurrentStatus:   models.StatusApplied,
		LastUpdated:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EmailCount:      1,
	}
	// The matched handle says row 2, but an out-of-band insert shifted
	// the application to row 3.
	f.store.rows = [][]string{filler.ToRow(), moved.ToRow()}
	stale := *moved
	stale.RowNumber = 2

	email := classifiedEmail("m2", func(e *models.Email) { e.ThreadID = "thread-m1" })
	if err := f.manager.UpdateApplication(&stale, email); err != nil {
		t.Fatal(err)
	}

	apps, _ := f.manager.GetAllApplications()
	if apps[0].Company != "Stripe" || apps[0].EmailCount != 1 {
		t.Errorf("wrong row mutated: %+v", apps[0])
	}
	if apps[1].Company != "Google" || apps[1].EmailCount != 2 {
		t.Errorf("expected the relocated row to be updated: %+v", apps[1])
	}
}
