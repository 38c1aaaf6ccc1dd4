package cmd

import (
	"context"
	"os"
	"path/filepath"

	"eggctl/src/internal/installer"
	"eggctl/src/internal/project"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <package_name>...",
	Short: "Add one or more packages to the project's environment",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wd, err := os.Getwd()
		if err != nil {
			pterm.Error.Printf("Failed to get cwd: %v\n", err)
			return
		}
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load eggctl.toml: %v\n", err)
			return
		}

		runtimeSel, changed, err := ensureRuntimeForProject(wd, &cfg)
		if err != nil {
			pterm.Error.Printf("Failed to prepare runtime: %v\n", err)
			return
		}
		if changed {
			_ = project.Save(tomlPath, cfg)
		}

		in, err := newFacadeInstaller(wd, cfg, runtimeSel)
		if err != nil {
			pterm.Error.Printf("Failed to init installer: %v\n", err)
			return
		}

		target := "venv:" + runtimeSel.VenvName
		if !runtimeSel.IsVenv {
			target = "system"
		}
		pterm.Info.Printf("Installing %d requirement(s) with Python %s [%s]...\n", len(args), cfg.Python.Version, target)
		ws, err := in.Install(context.Background(), afero.NewOsFs(), args, installer.InstallOptions{})
		if err != nil {
			pterm.Error.Printf("Install failed: %v\n", err)
			return
		}
		for _, req := range args {
			if depName := requirementToDepName(req); depName != "" {
				cfg.Deps[depName] = "*"
			}
		}
		for _, d := range ws.Distributions() {
			cfg.Deps[project.NormalizeDepName(d.ProjectKey)] = d.Version.String()
		}
		if err := project.Save(tomlPath, cfg); err != nil {
			pterm.Warning.Printf("Installed but failed to persist project config (%s): %v\n", filepath.Base(tomlPath), err)
			return
		}
		pterm.Success.Printf("Installed %d package artifact(s)\n", ws.Len())
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
