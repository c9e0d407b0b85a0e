package models

import (
	"time"
)

// Email represents a parsed message from the mailbox together with its
// classification output.
type Email struct {
	MessageID   string
	ThreadID    string
	Sender      string
	SenderEmail string
	Subject     string
	Body        string
	Date        time.Time
	GmailLink   string

	// Classification output
	IsJobRelated   bool
	DetectionScore int
	Company        string
	Position       string
	Status         Status
	EmailType      string
}

// CompanyOrUnknown returns the classified company, falling back to the
// sentinel when the classifier produced nothing.
func (e *Email) CompanyOrUnknown() string {
	if e.Company == "" {
		return UnknownCompany
	}
	return e.Company
}

// PositionOrUnknown returns the classified position, falling back to the
// sentinel when the classifier produced nothing.
func (e *Email) PositionOrUnknown() string {
	if e.Position == "" {
		return UnknownPosition
	}
	return e.Position
}

// StatusOrApplied returns the classified status, defaulting to Applied.
func (e *Email) StatusOrApplied() Status {
	if e.Status == "" {
		return StatusApplied
	}
	return e.Status
}
