package models

import (
	"testing"
)

func TestAllowTransition(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		proposed Status
		want     bool
	}{
		{"forward move", StatusApplied, StatusInterviewScheduled, true},
		{"same status", StatusUnderReview, StatusUnderReview, true},
		{"backward move refused", StatusInterviewScheduled, StatusApplied, false},
		{"terminal rejected frozen", StatusRejected, StatusInterviewScheduled, false},
		{"terminal withdrawn frozen", StatusWithdrawn, StatusApplied, false},
		{"terminal offer frozen", StatusOfferReceived, StatusRejected, false},
		{"unknown proposed refused", StatusApplied, Status("Ghosted"), false},
		{"unknown current allows update", Status("Ghosted"), StatusApplied, true},
		{"into terminal allowed", StatusInterviewScheduled, StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowTransition(tt.current, tt.proposed); got != tt.want {
				t.Errorf("AllowTransition(%q, %q) = %v, want %v",
					tt.current, tt.proposed, got, tt.want)
			}
		})
	}
}

func TestMostProgressed(t *testing.T) {
	tests := []struct {
		name string
		a, b Status
		want Status
	}{
		{"higher ordinal wins", StatusApplied, StatusInterviewScheduled, StatusInterviewScheduled},
		{"terminal beats higher ordinal side", StatusRejected, StatusAssessmentSent, StatusRejected},
		{"terminal beats non-terminal", StatusInterviewScheduled, StatusWithdrawn, StatusWithdrawn},
		{"recognized beats unrecognized", Status("Ghosted"), StatusApplied, StatusApplied},
		{"equal returns either", StatusUnderReview, StatusUnderReview, StatusUnderReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MostProgressed(tt.a, tt.b); got != tt.want {
				t.Errorf("MostProgressed(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMostProgressedSymmetric(t *testing.T) {
	for _, a := range StatusValues {
		for _, b := range StatusValues {
			x := MostProgressed(a, b)
			y := MostProgressed(b, a)
			// Both orders must agree on the progression level
			if x.IsTerminal() != y.IsTerminal() || statusIndex(x) != statusIndex(y) {
				t.Errorf("MostProgressed not symmetric for (%q, %q): %q vs %q", a, b, x, y)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusWithdrawn, StatusOfferReceived}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range StatusValues {
		if TerminalStatuses[s] {
			continue
		}
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}
