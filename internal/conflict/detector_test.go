package conflict

import (
	"testing"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
)

func TestDetectField(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		incoming  string
		field     string
		want      bool
		isUpgrade bool
	}{
		{
			name:     "equal values do not conflict",
			stored:   "Google",
			incoming: "Google",
			field:    FieldCompany,
			want:     false,
		},
		{
			name:     "case difference is a real conflict",
			stored:   "Google",
			incoming: "google",
			field:    FieldCompany,
			want:     true,
		},
		{
			name:      "unknown to known is an upgrade",
			stored:    models.UnknownCompany,
			incoming:  "Google",
			field:     FieldCompany,
			want:      true,
			isUpgrade: true,
		},
		{
			name:     "known to unknown is silently preserved",
			stored:   "Google",
			incoming: models.UnknownCompany,
			field:    FieldCompany,
			want:     false,
		},
		{
			name:     "both unknown variants do not conflict",
			stored:   models.UnknownPosition,
			incoming: "Unknown",
			field:    FieldPosition,
			want:     false,
		},
		{
			name:     "different real values conflict",
			stored:   "Software Engineer",
			incoming: "Backend Engineer",
			field:    FieldPosition,
			want:     true,
		},
		{
			name:      "unknown position to real position is an upgrade",
			stored:    models.UnknownPosition,
			incoming:  "Data Scientist",
			field:     FieldPosition,
			want:      true,
			isUpgrade: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectField(tt.stored, tt.incoming, tt.field)
			if (got != nil) != tt.want {
				t.Fatalf("detectField(%q, %q) conflict = %v, want %v",
					tt.stored, tt.incoming, got != nil, tt.want)
			}
			if got != nil && got.IsUpgrade != tt.isUpgrade {
				t.Errorf("IsUpgrade = %v, want %v", got.IsUpgrade, tt.isUpgrade)
			}
		})
	}
}

func TestDetectEvaluatesFieldsIndependently(t *testing.T) {
	app := &models.Application{
		Company:  models.UnknownCompany,
		Position: "Software Engineer",
	}
	email := &models.Email{
		Company:  "Google",
		Position: "Backend Engineer",
	}

	conflicts := Detect(app, email)
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
	}

	if conflicts[0].FieldName != FieldCompany || !conflicts[0].IsUpgrade {
		t.Errorf("expected company upgrade, got %+v", conflicts[0])
	}
	if conflicts[1].FieldName != FieldPosition || conflicts[1].IsUpgrade {
		t.Errorf("expected real position conflict, got %+v", conflicts[1])
	}
}

func TestDetectEmptyEmailFieldsTreatedAsUnknown(t *testing.T) {
	app := &models.Application{
		Company:  "Google",
		Position: "Software Engineer",
	}
	email := &models.Email{}

	// Empty classifier output maps to the sentinels, which never downgrade
	// real stored values.
	if conflicts := Detect(app, email); len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", conflicts)
	}
}

func TestDetectNoConflictsOnAgreement(t *testing.T) {
	app := &models.Application{
		Company:  "Stripe",
		Position: "Platform Engineer",
	}
	email := &models.Email{
		Company:  "Stripe",
		Position: "Platform Engineer",
	}

	if conflicts := Detect(app, email); len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", conflicts)
	}
}
