package models

// Status represents an application status in the progression ordering
type Status string

const (
	StatusApplied             Status = "Applied"
	StatusApplicationReceived Status = "Application Received"
	StatusUnderReview         Status = "Under Review"
	StatusPhoneScreen         Status = "Phone Screen Scheduled"
	StatusInterviewScheduled  Status = "Interview Scheduled"
	StatusAssessmentSent      Status = "Assessment Sent"
	StatusOfferReceived       Status = "Offer Received"
	StatusRejected            Status = "Rejected"
	StatusWithdrawn           Status = "Withdrawn"
)

// StatusValues is the fixed progression ordering. Updates may only move
// forward (or stay equal) in this ordering.
var StatusValues = []Status{
	StatusApplied,
	StatusApplicationReceived,
	StatusUnderReview,
	StatusPhoneScreen,
	StatusInterviewScheduled,
	StatusAssessmentSent,
	StatusOfferReceived,
	StatusRejected,
	StatusWithdrawn,
}

// TerminalStatuses are statuses after which no further status change is
// accepted.
var TerminalStatuses = map[Status]bool{
	StatusRejected:      true,
	StatusWithdrawn:     true,
	StatusOfferReceived: true,
}

// IsValid reports whether the status is part of the progression ordering.
func (s Status) IsValid() bool {
	return statusIndex(s) >= 0
}

// IsTerminal reports whether the status is terminal.
func (s Status) IsTerminal() bool {
	return TerminalStatuses[s]
}

// statusIndex returns the ordinal position of s, or -1 if unrecognized.
func statusIndex(s Status) int {
	for i, v := range StatusValues {
		if v == s {
			return i
		}
	}
	return -1
}

// AllowTransition decides whether a proposed status transition is legal.
// Terminal statuses never change. Unrecognized proposed statuses are
// refused. An unrecognized current status allows the update.
func AllowTransition(current, proposed Status) bool {
	if current.IsTerminal() {
		return false
	}

	newIdx := statusIndex(proposed)
	if newIdx < 0 {
		return false
	}

	curIdx := statusIndex(current)
	if curIdx < 0 {
		// Current status is not in the ordering, allow the update
		return true
	}

	return newIdx >= curIdx
}

// MostProgressed returns the more progressed of two statuses. Terminal
// statuses outrank non-terminal ones regardless of ordinal position; between
// two recognized statuses the higher ordinal wins; an unrecognized status
// loses to a recognized one.
func MostProgressed(a, b Status) Status {
	if a.IsTerminal() && !b.IsTerminal() {
		return a
	}
	if b.IsTerminal() && !a.IsTerminal() {
		return b
	}

	aIdx := statusIndex(a)
	bIdx := statusIndex(b)

	switch {
	case aIdx >= 0 && bIdx >= 0:
		if aIdx >= bIdx {
			return a
		}
		return b
	case aIdx >= 0:
		return a
	case bIdx >= 0:
		return b
	default:
		return a
	}
}
