package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbmodels "github.com/tyagiprnv/Job-Tracker/internal/database/models"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// TrackerHandler exposes tracker statistics.
type TrackerHandler struct {
	processed      *track.ProcessedTracker
	falsePositives *track.FalsePositivesTracker
	merged         *track.MergedTracker
	resolutions    *track.ResolutionTracker
}

// NewTrackerHandler creates a new TrackerHandler instance.
func NewTrackerHandler(processed *track.ProcessedTracker, falsePositives *track.FalsePositivesTracker,
	merged *track.MergedTracker, resolutions *track.ResolutionTracker) *TrackerHandler {
	return &TrackerHandler{
		processed:      processed,
		falsePositives: falsePositives,
		merged:         merged,
		resolutions:    resolutions,
	}
}

// GetStats returns counters for all trackers
// GET /api/trackers/stats
func (h *TrackerHandler) GetStats(c *gin.Context) {
	fpMessages, fpCombinations := h.falsePositives.Stats()
	redirections, merges := h.merged.Stats()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"processed_emails":            h.processed.Count(),
			"false_positive_messages":     fpMessages,
			"false_positive_combinations": fpCombinations,
			"merged_thread_redirections":  redirections,
			"merge_history_entries":       merges,
			"saved_resolutions":           h.resolutions.Count(),
		},
	})
}

// RunHandler exposes the audit trail of past reconciliation runs.
type RunHandler struct {
	db *gorm.DB
}

// NewRunHandler creates a new RunHandler instance.
func NewRunHandler(db *gorm.DB) *RunHandler {
	return &RunHandler{db: db}
}

// ListRunLogs returns recent audit entries, newest first
// GET /api/runs?run_id=...&limit=100
func (h *RunHandler) ListRunLogs(c *gin.Context) {
	limit := 100
	query := h.db.Model(&dbmodels.RunLog{}).Order("created_at DESC")
	if runID := c.Query("run_id"); runID != "" {
		query = query.Where("run_id = ?", runID)
	}

	var entries []dbmodels.RunLog
	if err := query.Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load run logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"entries": entries,
			"total":   len(entries),
		},
	})
}
