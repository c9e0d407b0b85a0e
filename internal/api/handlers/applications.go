// Package handlers contains the read-only HTTP handlers over the
// reconciled application set and its trackers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tyagiprnv/Job-Tracker/internal/models"
	"github.com/tyagiprnv/Job-Tracker/internal/reconcile"
)

// ApplicationHandler serves the reconciled application set.
type ApplicationHandler struct {
	manager *reconcile.Manager
}

// NewApplicationHandler creates a new ApplicationHandler instance.
func NewApplicationHandler(manager *reconcile.Manager) *ApplicationHandler {
	return &ApplicationHandler{manager: manager}
}

// ApplicationResponse represents one application in API responses.
type ApplicationResponse struct {
	RowNumber       int    `json:"row_number"`
	Company         string `json:"company"`
	Position        string `json:"position"`
	ApplicationDate string `json:"application_date"`
	CurrentStatus   string `json:"current_status"`
	LastUpdated     string `json:"last_updated"`
	EmailCount      int    `json:"email_count"`
	LatestEmailDate string `json:"latest_email_date,omitempty"`
	Notes           string `json:"notes,omitempty"`
	GmailLink       string `json:"gmail_link,omitempty"`
	ThreadID        string `json:"thread_id,omitempty"`
	Terminal        bool   `json:"terminal"`
}

func toApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		RowNumber:       app.RowNumber,
		Company:         app.Company,
		Position:        app.Position,
		ApplicationDate: app.ApplicationDate.Format(models.DateLayout),
		CurrentStatus:   string(app.CurrentStatus),
		LastUpdated:     app.LastUpdated.Format(models.DateLayout),
		EmailCount:      app.EmailCount,
		Notes:           app.Notes,
		GmailLink:       app.GmailLink,
		ThreadID:        app.ThreadID,
		Terminal:        app.CurrentStatus.IsTerminal(),
	}
	if app.LatestEmailDate != nil {
		resp.LatestEmailDate = app.LatestEmailDate.Format(models.DateLayout)
	}
	return resp
}

// ListApplications returns all applications, optionally filtered by status
// GET /api/applications?status=Interview%20Scheduled
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.manager.GetAllApplications()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load applications",
			},
		})
		return
	}

	statusFilter := c.Query("status")
	responses := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		if statusFilter != "" && string(app.CurrentStatus) != statusFilter {
			continue
		}
		responses = append(responses, toApplicationResponse(app))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"applications": responses,
			"total":        len(responses),
		},
	})
}

// GetApplication returns a single application by row number
// GET /api/applications/:row
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid row number",
			},
		})
		return
	}

	apps, err := h.manager.GetAllApplications()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load applications",
			},
		})
		return
	}

	for _, app := range apps {
		if app.RowNumber == row {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    toApplicationResponse(app),
			})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "NOT_FOUND",
			"message": "Application not found",
		},
	})
}

// StatusSummary returns application counts grouped by status
// GET /api/applications/summary
func (h *ApplicationHandler) StatusSummary(c *gin.Context) {
	apps, err := h.manager.GetAllApplications()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load applications",
			},
		})
		return
	}

	counts := make(map[string]int)
	for _, app := range apps {
		counts[string(app.CurrentStatus)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":        len(apps),
			"by_status":    counts,
			"generated_at": time.Now().Format(time.RFC3339),
		},
	})
}
