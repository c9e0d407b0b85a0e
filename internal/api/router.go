// Package api wires the read-only HTTP surface over the reconciled
// application data. All routes except the health check require the
// file-persisted API key.
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tyagiprnv/Job-Tracker/internal/api/handlers"
	"github.com/tyagiprnv/Job-Tracker/internal/api/middleware"
	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/reconcile"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

// Trackers bundles the tracker set exposed through the API.
type Trackers struct {
	Processed      *track.ProcessedTracker
	FalsePositives *track.FalsePositivesTracker
	Merged         *track.MergedTracker
	Resolutions    *track.ResolutionTracker
}

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config, manager *reconcile.Manager, trackers Trackers) (*gin.Engine, *middleware.APIKeyManager, error) {
	router := gin.Default()

	origins := strings.Split(cfg.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiKeyManager, err := middleware.NewAPIKeyManager(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	applicationHandler := handlers.NewApplicationHandler(manager)
	trackerHandler := handlers.NewTrackerHandler(
		trackers.Processed, trackers.FalsePositives, trackers.Merged, trackers.Resolutions)
	runHandler := handlers.NewRunHandler(db)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.Use(middleware.APIKeyMiddleware(apiKeyManager))

		applications := api.Group("/applications")
		{
			applications.GET("", applicationHandler.ListApplications)
			applications.GET("/summary", applicationHandler.StatusSummary) // must be before /:row
			applications.GET("/:row", applicationHandler.GetApplication)
		}

		api.GET("/trackers/stats", trackerHandler.GetStats)
		api.GET("/runs", runHandler.ListRunLogs)
	}

	return router, apiKeyManager, nil
}
