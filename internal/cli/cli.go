// Package cli provides the command line interface for the job tracker.
package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/conflict"
	"github.com/tyagiprnv/Job-Tracker/internal/match"
	"github.com/tyagiprnv/Job-Tracker/internal/merge"
	"github.com/tyagiprnv/Job-Tracker/internal/reconcile"
	"github.com/tyagiprnv/Job-Tracker/internal/store"
	"github.com/tyagiprnv/Job-Tracker/internal/track"
)

var (
	db  *gorm.DB
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "job-tracker",
	Short: "Job application tracker backend",
	Long: `Job Tracker reconciles job application emails into a single
application record per application.

Available commands:
  job-tracker run             # fetch, classify and reconcile recent emails
  job-tracker serve           # start the read-only HTTP API
  job-tracker trackers stats  # show tracker counters
  job-tracker trackers reset  # reset one or all trackers
  job-tracker key show        # show the current API key
  job-tracker key reset       # reset the API key`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) error {
	db = database
	cfg = config
	return rootCmd.Execute()
}

// stack bundles the wired reconciliation components.
type stack struct {
	store          store.RecordStore
	processed      *track.ProcessedTracker
	falsePositives *track.FalsePositivesTracker
	merged         *track.MergedTracker
	resolutions    *track.ResolutionTracker
	matcher        *match.Matcher
	merger         *merge.Engine
	manager        *reconcile.Manager
}

// buildStack wires the record store, trackers, matcher and manager.
func buildStack(interactive bool) *stack {
	recordStore := store.NewRetryingStore(store.NewSQLiteStore(db))

	s := &stack{
		store:          recordStore,
		processed:      track.NewProcessedTracker(cfg.TrackerPath("processed_emails.json")),
		falsePositives: track.NewFalsePositivesTracker(cfg.TrackerPath("false_positives.json")),
		merged:         track.NewMergedTracker(cfg.TrackerPath("merged_threads.json")),
		resolutions:    track.NewResolutionTracker(cfg.TrackerPath("conflict_resolutions.json")),
	}

	resolver := conflict.NewResolver(interactive, conflict.NewTerminalPrompter(), s.resolutions)
	s.matcher = match.NewMatcher(cfg, s.merged)
	s.merger = merge.NewEngine(recordStore, s.merged)
	s.manager = reconcile.NewManager(recordStore, s.processed, s.falsePositives, resolver)
	return s
}

// cachePath returns the analyzer cache location under the data dir.
func cachePath() string {
	return filepath.Join(cfg.DataDir, "analysis_cache.json")
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trackersCmd)
	rootCmd.AddCommand(keyCmd)
}
