// Package store defines the tabular record store the application list is
// persisted in, plus a SQLite-backed implementation and a retrying
// decorator for transient backend failures.
package store

import (
	"errors"
)

var (
	// ErrRowNotFound indicates the requested row does not exist
	ErrRowNotFound = errors.New("row not found")
	// ErrTransient marks a retriable backend failure (rate limiting,
	// network); adapters wrap transient errors with it
	ErrTransient = errors.New("transient store failure")
	// ErrRetriesExhausted indicates the bounded retry count was exceeded
	ErrRetriesExhausted = errors.New("store retries exhausted")
)

// Column indices of the ordered row schema.
const (
	ColCompany = iota
	ColPosition
	ColApplicationDate
	ColCurrentStatus
	ColLastUpdated
	ColEmailCount
	ColLatestEmailDate
	ColNotes
	ColSourceLink
	ColThreadIDs
	ColMergeTarget

	NumColumns
)

// FirstDataRow is the row number of the first data row; row 1 is the
// header, matching spreadsheet conventions.
const FirstDataRow = 2

// RecordStore is the append/read/update/delete surface over the tabular
// backing store. Row numbers are unstable identities: out-of-band edits
// may shift them, so callers re-resolve by logical key before mutating.
type RecordStore interface {
	// ReadAll returns all data rows in order, starting at FirstDataRow.
	ReadAll() ([][]string, error)
	// Append adds one row at the end.
	Append(row []string) error
	// AppendMany adds rows at the end, preserving order.
	AppendMany(rows [][]string) error
	// Update replaces the row at rowNumber.
	Update(rowNumber int, row []string) error
	// Delete removes the row at rowNumber; following rows shift up.
	Delete(rowNumber int) error
	// Find returns the row number of the first row whose column equals
	// value, or ErrRowNotFound.
	Find(column int, value string) (int, error)
}

// IsTransient reports whether an error is a retriable backend failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
