package models

import (
	"strconv"
	"strings"
	"time"
)

// Sentinel values used in the backing store when a field has not been
// extracted yet. Distinct from the empty string, which means an empty cell.
const (
	UnknownCompany  = "Unknown"
	UnknownPosition = "Unknown Position"
)

// DateLayout is the date format used by the backing store.
const DateLayout = "2006-01-02"

// Application represents one tracked job application in the backing store.
type Application struct {
	Company         string
	Position        string
	ApplicationDate time.Time
	CurrentStatus   Status
	LastUpdated     time.Time
	EmailCount      int
	LatestEmailDate *time.Time
	Notes           string
	GmailLink       string

	// RowNumber is the position in the backing store. It may be
	// invalidated by out-of-band edits and must be re-resolved before
	// any mutation.
	RowNumber int

	// ThreadID holds zero or more source conversation ids, comma joined.
	ThreadID string

	// MergeIntoRow is an externally set flag requesting that this
	// application be folded into the referenced row.
	MergeIntoRow string
}

// IsUnknownCompany reports whether a company value means "not yet known".
func IsUnknownCompany(value string) bool {
	return value == "" || value == UnknownCompany
}

// IsUnknownPosition reports whether a position value means "not yet known".
func IsUnknownPosition(value string) bool {
	return value == "" || value == UnknownCompany || value == UnknownPosition
}

// ToRow converts the application to an ordered store row.
func (a *Application) ToRow() []string {
	latest := ""
	if a.LatestEmailDate != nil {
		latest = a.LatestEmailDate.Format(DateLayout)
	}

	return []string{
		a.Company,
		a.Position,
		a.ApplicationDate.Format(DateLayout),
		string(a.CurrentStatus),
		a.LastUpdated.Format(DateLayout),
		strconv.Itoa(a.EmailCount),
		latest,
		a.Notes,
		a.GmailLink,
		a.ThreadID,
		a.MergeIntoRow,
	}
}

// ApplicationFromRow creates an application from a store row. Missing
// trailing cells default to empty values; unparseable dates default to the
// current time and an unparseable count defaults to 1, so a damaged row is
// loaded rather than rejected.
func ApplicationFromRow(row []string, rowNumber int) *Application {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	app := &Application{
		Company:      cell(0),
		Position:     cell(1),
		Notes:        cell(7),
		GmailLink:    cell(8),
		ThreadID:     cell(9),
		MergeIntoRow: cell(10),
		RowNumber:    rowNumber,
	}

	status := cell(3)
	if status == "" {
		status = string(StatusApplied)
	}
	app.CurrentStatus = Status(status)

	app.ApplicationDate = parseDateOr(cell(2), time.Now())
	app.LastUpdated = parseDateOr(cell(4), time.Now())

	if count, err := strconv.Atoi(cell(5)); err == nil {
		app.EmailCount = count
	} else {
		app.EmailCount = 1
	}

	if latest := cell(6); latest != "" {
		if t, err := time.Parse(DateLayout, latest); err == nil {
			app.LatestEmailDate = &t
		}
	}

	return app
}

// ThreadIDs returns the list of conversation ids held by the application.
func (a *Application) ThreadIDs() []string {
	if a.ThreadID == "" {
		return nil
	}

	var ids []string
	for _, id := range strings.Split(a.ThreadID, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddThreadID adds a conversation id if not already present. Thread id sets
// only grow.
func (a *Application) AddThreadID(threadID string) {
	if threadID == "" {
		return
	}

	ids := a.ThreadIDs()
	for _, id := range ids {
		if id == threadID {
			return
		}
	}
	ids = append(ids, threadID)
	a.ThreadID = strings.Join(ids, ",")
}

// String returns a short human readable description.
func (a *Application) String() string {
	return a.Company + " - " + a.Position + " (" + string(a.CurrentStatus) + ")"
}

func parseDateOr(value string, fallback time.Time) time.Time {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t
	}
	return fallback
}
