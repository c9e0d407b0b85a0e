package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tyagiprnv/Job-Tracker/internal/api/middleware"
)

// keyCmd represents the key command group
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "API key management",
	Long:  `Manage the API key used by the HTTP API, including showing and resetting it.`,
}

// keyShowCmd shows the current API key
var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := middleware.NewAPIKeyManager(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing API key manager: %w", err)
		}

		fmt.Println("Current API key:")
		fmt.Println(manager.GetCurrentKey())
		return nil
	},
}

// keyResetCmd resets the API key
var keyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the API key",
	Long:  `Generates a new API key. The old key stops working immediately. This operation asks for confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := middleware.NewAPIKeyManager(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing API key manager: %w", err)
		}

		fmt.Println("Current API key:")
		fmt.Println(manager.GetCurrentKey())
		fmt.Println()
		fmt.Print("Warning: clients using the old key will lose access.\nReset the API key? (yes/no): ")

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

		newKey, err := manager.ResetKey()
		if err != nil {
			return fmt.Errorf("resetting API key: %w", err)
		}

		fmt.Println()
		fmt.Println("API key reset.")
		fmt.Println("New API key:")
		fmt.Println(newKey)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyResetCmd)
}
