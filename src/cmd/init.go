package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/project"
	"eggctl/src/internal/python"

	"github.com/spf13/cobra"
)

var initPythonExe string

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a project with eggctl.toml",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		wd, err := os.Getwd()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if name != "" && name != "." {
			wd = filepath.Join(wd, name)
			if err := os.MkdirAll(wd, 0755); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}

		fmt.Printf("Initializing project at %s...\n", wd)

		exe := initPythonExe
		if exe == "" {
			if found, err := python.FindOnPath("python3", "python"); err == nil {
				exe = found
			}
		}

		version := ""
		if exe != "" {
			if v, err := interpreterprobe.New().Version(exe); err == nil {
				version = v
			}
		}
		if version == "" {
			version = GetPreferredPythonVersion()
		}

		cfg := project.NewDefault(wd)
		if cfg.Project.Name == "" {
			cfg.Project.Name = filepath.Base(wd)
		}
		cfg.Python.Version = version
		cfg.Python.Executable = exe
		if err := project.Save(filepath.Join(wd, project.FileName), cfg); err != nil {
			fmt.Printf("Error writing eggctl.toml: %v\n", err)
			return
		}
		fmt.Printf("Created %s\n", filepath.Join(wd, project.FileName))

		fmt.Println("Project initialized successfully.")
	},
}

func init() {
	initCmd.Flags().StringVarP(&initPythonExe, "python", "p", "", "Python executable to use for this project")
	rootCmd.AddCommand(initCmd)
}
