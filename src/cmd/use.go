package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"eggctl/src/internal/appdir"
	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/project"
	"eggctl/src/internal/python"
	"eggctl/src/internal/utils"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var defaultFlag bool

var useCmd = &cobra.Command{
	Use:   "use <python_executable>",
	Short: "Select an interpreter for this project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exe := args[0]

		pythonExe, err := python.FindOnPath(exe)
		if err != nil {
			pterm.Error.Printf("Could not locate interpreter %q on PATH: %v\n", exe, err)
			return
		}

		probe := interpreterprobe.New()
		version, err := probe.Version(pythonExe)
		if err != nil {
			pterm.Error.Printf("Failed to probe interpreter version: %v\n", err)
			return
		}

		pterm.Info.Println("Saving interpreter preference...")
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load eggctl.toml: %v\n", err)
			return
		}
		cfg.Python.Version = version
		cfg.Python.Executable = pythonExe
		if err := project.Save(tomlPath, cfg); err != nil {
			pterm.Error.Printf("Failed to save eggctl.toml: %v\n", err)
		} else {
			pterm.Success.Printf("Project now uses Python %s (%s)\n", version, pythonExe)
		}

		if defaultFlag {
			pterm.Info.Println("Updating global default...")
			viper.Set("default_python", pythonExe)

			configPath := appdir.ConfigFile()
			os.MkdirAll(filepath.Dir(configPath), 0755)

			if err := viper.WriteConfigAs(configPath); err != nil {
				viper.WriteConfig()
			}
			utils.CreateShim("python", pythonExe)
			pterm.Success.Printf("Global default set to %s\n", pythonExe)
		}

		err = utils.CreateShim("python"+strings.ReplaceAll(version, ".", ""), pythonExe)
		if err != nil {
			pterm.Warning.Printf("Failed to create versioned shim: %v\n", err)
		}
	},
}

func init() {
	useCmd.Flags().BoolVarP(&defaultFlag, "default", "d", false, "Set as the global default interpreter")
	rootCmd.AddCommand(useCmd)
}
