package cmd

import (
	"fmt"
	"os"

	"eggctl/src/internal/project"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Manage PyPI registry mirrors",
}

var mirrorAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a find-links mirror to the project's index config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		for _, existing := range cfg.Index.FindLinks {
			if existing == url {
				pterm.Info.Printf("Mirror already configured: %s\n", url)
				return
			}
		}
		cfg.Index.FindLinks = append(cfg.Index.FindLinks, url)
		if err := project.Save(tomlPath, cfg); err != nil {
			pterm.Error.Printf("Failed to save eggctl.toml: %v\n", err)
			return
		}
		pterm.Success.Printf("Added mirror: %s\n", url)
	},
}

var mirrorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured mirrors",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		indexURL := cfg.Index.URL
		if indexURL == "" {
			indexURL = "https://pypi.org/pypi"
		}
		fmt.Println("Configured mirrors:")
		fmt.Printf("- %s (index)\n", indexURL)
		for _, fl := range cfg.Index.FindLinks {
			fmt.Printf("- %s (find-links)\n", fl)
		}
	},
}

func init() {
	mirrorCmd.AddCommand(mirrorAddCmd)
	mirrorCmd.AddCommand(mirrorListCmd)
	rootCmd.AddCommand(mirrorCmd)
}
