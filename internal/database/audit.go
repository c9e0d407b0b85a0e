package database

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tyagiprnv/Job-Tracker/internal/database/models"
)

// AuditLogger writes run-scoped audit entries. All entries of one
// pipeline run share a generated run id so a run can be replayed from
// the log table.
type AuditLogger struct {
	db    *gorm.DB
	runID string
}

// NewAuditLogger starts a new audit scope with a fresh run id.
func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{
		db:    db,
		runID: uuid.NewString(),
	}
}

// RunID returns the id shared by all entries of this scope.
func (a *AuditLogger) RunID() string {
	return a.runID
}

// Log persists one audit entry. Details may be nil; a failed insert is
// logged and swallowed so auditing never fails a run.
func (a *AuditLogger) Log(level models.LogLevel, module models.LogModule, action, message string, details map[string]any) {
	if a == nil || a.db == nil {
		return
	}

	var detailsJSON string
	if details != nil {
		if encoded, err := json.Marshal(details); err == nil {
			detailsJSON = string(encoded)
		}
	}

	entry := models.RunLog{
		RunID:     a.runID,
		Level:     string(level),
		Module:    string(module),
		Action:    action,
		Message:   message,
		Details:   detailsJSON,
		CreatedAt: time.Now(),
	}
	if err := a.db.Create(&entry).Error; err != nil {
		log.Printf("[Audit] failed to write audit entry: %v", err)
	}
}

// Info is shorthand for an INFO entry.
func (a *AuditLogger) Info(module models.LogModule, action, message string, details map[string]any) {
	a.Log(models.LogLevelInfo, module, action, message, details)
}

// Error is shorthand for an ERROR entry.
func (a *AuditLogger) Error(module models.LogModule, action, message string, details map[string]any) {
	a.Log(models.LogLevelError, module, action, message, details)
}
