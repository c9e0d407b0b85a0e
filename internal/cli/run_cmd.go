package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tyagiprnv/Job-Tracker/internal/classify"
	"github.com/tyagiprnv/Job-Tracker/internal/database"
	"github.com/tyagiprnv/Job-Tracker/internal/mail"
	"github.com/tyagiprnv/Job-Tracker/internal/reconcile"
)

var (
	runDays           int
	runDryRun         bool
	runLocalOnly      bool
	runNonInteractive bool
)

// runCmd fetches, classifies and reconciles recent emails
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, classify and reconcile recent emails",
	Long: `Fetches emails from the configured mailbox, classifies them,
matches each job-related email against the stored applications and
applies creates, updates and pending merges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		fetcher := mail.NewFetcher(cfg)
		emails, err := fetcher.Fetch(ctx, runDays)
		if err != nil {
			return fmt.Errorf("fetching emails: %w", err)
		}
		fmt.Printf("Fetched %d emails\n", len(emails))

		analyzerCfg := *cfg
		if runLocalOnly {
			analyzerCfg.AIEnabled = false
		}
		analyzer := classify.NewAnalyzer(&analyzerCfg, cachePath())
		jobEmails := analyzer.AnalyzeBatch(emails)
		fmt.Printf("Classified %d job-related emails (mode: %s)\n", len(jobEmails), analyzer.Mode())

		s := buildStack(!runNonInteractive)
		pipeline := reconcile.NewPipeline(
			s.manager, s.matcher, s.merger, database.NewAuditLogger(db), runDryRun)

		summary, err := pipeline.Run(jobEmails)
		if err != nil {
			return fmt.Errorf("reconciliation run: %w", err)
		}

		if summary.DryRun {
			fmt.Println("Dry run, no changes were written.")
		}
		fmt.Printf("Run %s: %d created, %d updated, %d merged, %d skipped, %d failed\n",
			summary.RunID, summary.Created, summary.Updated, summary.Merged,
			summary.Skipped, summary.Failed)

		if summary.Failed > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runDays, "days", 0, "search window in days (default: configured search window)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report what would change without writing")
	runCmd.Flags().BoolVar(&runLocalOnly, "local-only", false, "classify with local rules only, skip the AI backend")
	runCmd.Flags().BoolVar(&runNonInteractive, "non-interactive", false, "never prompt, auto-resolve conflicts conservatively")
}
