package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"eggctl/src/internal/appdir"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var forceFlag bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all global and local state managed by eggctl",
	Long: `Remove the global eggctl data directory and local project state
(eggctl.toml). WARNING: This operation is destructive.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !forceFlag {
			pterm.Warning.Println("This will delete all global and local eggctl data, including:")
			fmt.Printf("- %s (config, cache, credentials, profiles)\n", appdir.MustHome())
			fmt.Println("- eggctl.toml in the current directory")
			fmt.Print("\nAre you sure you want to proceed? (y/N): ")

			reader := bufio.NewReader(os.Stdin)
			input, _ := reader.ReadString('\n')
			input = strings.TrimSpace(strings.ToLower(input))

			if input != "y" && input != "yes" {
				pterm.Info.Println("Cleanup cancelled.")
				return
			}
		}

		pterm.Info.Println("Starting system-wide cleanup...")

		home, _ := os.UserHomeDir()
		globalDir := appdir.MustHome()
		removePath(globalDir, "Global configuration and data")
		removePath(filepath.Join(home, ".cache", "eggctl"), "Global CAS cache")

		removePath("eggctl.toml", "Local project configuration")

		pterm.Success.Println("Cleanup complete. All eggctl-related data has been removed.")
	},
}

func removePath(path string, description string) {
	if _, err := os.Stat(path); err == nil {
		pterm.Info.Printf("Removing %s at %s...\n", description, path)
		if err := os.RemoveAll(path); err != nil {
			pterm.Error.Printf("Failed to remove %s: %v\n", path, err)
		}
	}
}

func init() {
	cleanCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Force cleanup without confirmation")
	rootCmd.AddCommand(cleanCmd)
}
