// Package conflict implements field conflict detection between stored
// applications and newly observed email values, and their resolution
// through a pluggable decision provider backed by a persistent memo.
package conflict

import (
	"github.com/tyagiprnv/Job-Tracker/internal/models"
)

// Field names used in conflicts and the resolution memo.
const (
	FieldCompany  = "Company"
	FieldPosition = "Position"
)

// FieldConflict represents a disagreement for a single field.
type FieldConflict struct {
	FieldName     string
	StoredValue   string
	IncomingValue string

	// IsUpgrade is true when the stored value is a sentinel and the
	// incoming one is not; such conflicts auto-apply without prompting.
	IsUpgrade bool
}

// detectField evaluates one field independently. Byte-equal values never
// conflict; a known stored value is never downgraded by an unknown
// incoming one.
func detectField(storedValue, incomingValue, fieldName string) *FieldConflict {
	var storedUnknown, incomingUnknown bool
	if fieldName == FieldPosition {
		storedUnknown = models.IsUnknownPosition(storedValue)
		incomingUnknown = models.IsUnknownPosition(incomingValue)
	} else {
		storedUnknown = models.IsUnknownCompany(storedValue)
		incomingUnknown = models.IsUnknownCompany(incomingValue)
	}

	if storedValue == incomingValue {
		return nil
	}

	// Upgrade: unknown -> real value
	if storedUnknown && !incomingUnknown {
		return &FieldConflict{
			FieldName:     fieldName,
			StoredValue:   storedValue,
			IncomingValue: incomingValue,
			IsUpgrade:     true,
		}
	}

	// Downgrade: real -> unknown, silently preserve the stored value
	if !storedUnknown && incomingUnknown {
		return nil
	}

	// Both real but different
	if !storedUnknown && !incomingUnknown {
		return &FieldConflict{
			FieldName:     fieldName,
			StoredValue:   storedValue,
			IncomingValue: incomingValue,
		}
	}

	return nil
}

// Detect compares a matched application's fields against the incoming
// email's fields and returns the disagreements, evaluated independently
// per field.
func Detect(app *models.Application, email *models.Email) []FieldConflict {
	var conflicts []FieldConflict

	if c := detectField(app.Company, email.CompanyOrUnknown(), FieldCompany); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := detectField(app.Position, email.PositionOrUnknown(), FieldPosition); c != nil {
		conflicts = append(conflicts, *c)
	}

	return conflicts
}
