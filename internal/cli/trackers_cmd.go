package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// trackersCmd represents the trackers command group
var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "Inspect and reset the reconciliation trackers",
}

// trackersStatsCmd shows tracker counters
var trackersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tracker counters",
	Run: func(cmd *cobra.Command, args []string) {
		s := buildStack(false)

		fpMessages, fpCombinations := s.falsePositives.Stats()
		redirections, merges := s.merged.Stats()

		fmt.Printf("Processed emails:            %d\n", s.processed.Count())
		fmt.Printf("False positive messages:     %d\n", fpMessages)
		fmt.Printf("False positive combinations: %d\n", fpCombinations)
		fmt.Printf("Merged thread redirections:  %d\n", redirections)
		fmt.Printf("Merge history entries:       %d\n", merges)
		fmt.Printf("Saved conflict resolutions:  %d\n", s.resolutions.Count())
	},
}

// trackersResetCmd resets one or all trackers
var trackersResetCmd = &cobra.Command{
	Use:   "reset [processed|false-positives|merged|resolutions|all]",
	Short: "Reset one or all trackers",
	Long: `Clears tracker state. Resetting the processed tracker makes every
email in the search window eligible for re-processing on the next run.
This operation asks for confirmation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])

		fmt.Printf("Warning: resetting %q cannot be undone.\n", name)
		fmt.Print("Continue? (yes/no): ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		input = strings.TrimSpace(strings.ToLower(input))
		if input != "yes" && input != "y" {
			fmt.Println("Cancelled.")
			return nil
		}

		s := buildStack(false)
		switch name {
		case "processed":
			err = s.processed.Reset()
		case "false-positives":
			err = s.falsePositives.Reset()
		case "merged":
			err = s.merged.Reset()
		case "resolutions":
			err = s.resolutions.Reset()
		case "all":
			for _, reset := range []func() error{
				s.processed.Reset, s.falsePositives.Reset,
				s.merged.Reset, s.resolutions.Reset,
			} {
				if err = reset(); err != nil {
					break
				}
			}
		default:
			return fmt.Errorf("unknown tracker %q", name)
		}
		if err != nil {
			return fmt.Errorf("resetting %s: %w", name, err)
		}

		fmt.Printf("Tracker %q reset.\n", name)
		return nil
	},
}

func init() {
	trackersCmd.AddCommand(trackersStatsCmd)
	trackersCmd.AddCommand(trackersResetCmd)
}
