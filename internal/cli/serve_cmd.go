package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyagiprnv/Job-Tracker/internal/api"
)

// serveCmd starts the read-only HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long: `Starts the HTTP API that serves the reconciled application set,
tracker statistics and run history. All routes except /health require
the X-API-Key header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := buildStack(false)

		router, apiKeyManager, err := api.SetupRouter(db, cfg, s.manager, api.Trackers{
			Processed:      s.processed,
			FalsePositives: s.falsePositives,
			Merged:         s.merged,
			Resolutions:    s.resolutions,
		})
		if err != nil {
			return fmt.Errorf("setting up router: %w", err)
		}

		fmt.Printf("API key: %s\n", apiKeyManager.GetCurrentKey())
		fmt.Printf("Listening on :%s\n", cfg.APIPort)
		return router.Run(":" + cfg.APIPort)
	},
}
