package models

import (
	"reflect"
	"testing"
	"time"
)

func date(value string) time.Time {
	t, _ := time.Parse(DateLayout, value)
	return t
}

func TestApplicationRowRoundTrip(t *testing.T) {
	latest := date("2025-03-10")
	app := &Application{
		Company:         "Acme",
		Position:        "Backend Engineer",
		ApplicationDate: date("2025-03-01"),
		CurrentStatus:   StatusInterviewScheduled,
		LastUpdated:     date("2025-03-10"),
		EmailCount:      3,
		LatestEmailDate: &latest,
		Notes:           "referred",
		GmailLink:       "https://mail.example/1",
		ThreadID:        "t1,t2",
		RowNumber:       5,
	}

	got := ApplicationFromRow(app.ToRow(), 5)
	if got.Company != app.Company || got.Position != app.Position ||
		got.CurrentStatus != app.CurrentStatus || got.EmailCount != app.EmailCount ||
		got.Notes != app.Notes || got.ThreadID != app.ThreadID {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.ApplicationDate.Equal(app.ApplicationDate) {
		t.Errorf("application date mismatch: %v", got.ApplicationDate)
	}
	if got.LatestEmailDate == nil || !got.LatestEmailDate.Equal(latest) {
		t.Errorf("latest email date mismatch: %v", got.LatestEmailDate)
	}
}

func TestApplicationFromRowLenient(t *testing.T) {
	// Damaged row: bad dates, bad count, missing trailing cells
	row := []string{"Acme", "Engineer", "not-a-date", "", "also-bad", "many"}
	app := ApplicationFromRow(row, 2)

	if app.Company != "Acme" {
		t.Errorf("company = %q", app.Company)
	}
	if app.CurrentStatus != StatusApplied {
		t.Errorf("empty status should default to Applied, got %q", app.CurrentStatus)
	}
	if app.EmailCount != 1 {
		t.Errorf("bad count should default to 1, got %d", app.EmailCount)
	}
	if app.LatestEmailDate != nil {
		t.Errorf("missing latest date should stay nil")
	}
	if time.Since(app.ApplicationDate) > time.Minute {
		t.Errorf("bad date should default to now, got %v", app.ApplicationDate)
	}
}

func TestThreadIDsUnion(t *testing.T) {
	app := &Application{ThreadID: "a, b"}

	app.AddThreadID("b")
	app.AddThreadID("c")
	app.AddThreadID("")

	if got, want := app.ThreadIDs(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ThreadIDs() = %v, want %v", got, want)
	}
}

func TestUnknownSentinels(t *testing.T) {
	if !IsUnknownCompany("") || !IsUnknownCompany("Unknown") {
		t.Error("empty and Unknown should be unknown companies")
	}
	if IsUnknownCompany("Acme") {
		t.Error("Acme should be a known company")
	}
	if !IsUnknownPosition("") || !IsUnknownPosition("Unknown") || !IsUnknownPosition("Unknown Position") {
		t.Error("sentinels should be unknown positions")
	}
	if IsUnknownPosition("Engineer") {
		t.Error("Engineer should be a known position")
	}
}
