package cmd

import (
	"fmt"
	"path/filepath"

	"eggctl/src/internal/appdir"

	"github.com/spf13/cobra"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage eggctl plugins",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Run: func(cmd *cobra.Command, args []string) {
		pluginDir := filepath.Join(appdir.MustHome(), "plugins")
		fmt.Printf("Plugins directory: %s\n", pluginDir)
		fmt.Println("No plugins installed.")
	},
}

func init() {
	pluginCmd.AddCommand(pluginListCmd)
	rootCmd.AddCommand(pluginCmd)
}
