package cmd

import (
	"context"
	"fmt"
	"os"

	"eggctl/src/internal/project"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var buildVerbose bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the current project into a binary archive",
	Run: func(cmd *cobra.Command, args []string) {
		wd, err := os.Getwd()
		if err != nil {
			pterm.Error.Printf("Failed to get cwd: %v\n", err)
			return
		}
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project config: %v\n", err)
			return
		}
		runtimeSel, _, err := ensureRuntimeForProject(wd, &cfg)
		if err != nil {
			pterm.Error.Printf("Failed to prepare runtime: %v\n", err)
			return
		}

		in, err := newFacadeInstaller(wd, cfg, runtimeSel)
		if err != nil {
			pterm.Error.Printf("Failed to init installer: %v\n", err)
			return
		}

		pterm.Info.Println("Building...")
		archives, err := in.Build(context.Background(), wd, buildVerbose)
		if err != nil {
			pterm.Error.Printf("Build failed: %v\n", err)
			return
		}
		for _, a := range archives {
			fmt.Printf("Built %s\n", a)
		}
	},
}

func init() {
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "pass verbose output through to the build tool")
	rootCmd.AddCommand(buildCmd)
}
