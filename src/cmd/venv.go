package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"eggctl/src/internal/python"
	"eggctl/src/internal/venv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var venvCmd = &cobra.Command{
	Use:   "venv",
	Short: "Manage the project's virtual environment",
}

var venvCreateCmd = &cobra.Command{
	Use:   "create [path]",
	Short: "Create a virtual environment",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := venvPathArg(args)

		pythonExe, err := python.FindOnPath("python3", "python")
		if err != nil {
			pterm.Error.Printf("No interpreter found on PATH: %v\n", err)
			return
		}

		pterm.Info.Printf("Creating venv at %s with %s...\n", path, pythonExe)
		if err := venv.Create(path, pythonExe); err != nil {
			pterm.Error.Printf("Failed to create venv: %v\n", err)
			return
		}
		pterm.Success.Printf("Venv created at %s.\n", path)
	},
}

var venvListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show this project's virtual environment, if any",
	Run: func(cmd *cobra.Command, args []string) {
		path := venvPathArg(nil)
		if venv.Exists(path) {
			fmt.Printf("- %s (%s)\n", filepath.Base(path), path)
			return
		}
		fmt.Println("No virtual environment found at " + path)
	},
}

var venvActivateCmd = &cobra.Command{
	Use:   "activate [path]",
	Short: "Activate the virtual environment in a new shell",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := venvPathArg(args)
		if !venv.Exists(path) {
			pterm.Error.Printf("Venv does not exist at %s.\n", path)
			return
		}

		if runtime.GOOS == "windows" {
			psScript := venv.ActivateScript(path)
			pterm.Info.Printf("Launching new PowerShell window with venv at '%s' activated...\n", path)
			shellCmd := exec.Command("cmd", "/c", "start", "powershell", "-NoExit", "-Command", fmt.Sprintf(". '%s'", psScript))
			if err := shellCmd.Start(); err != nil {
				pterm.Error.Printf("Failed to launch new window: %v\n", err)
				return
			}
			pterm.Success.Println("New window launched.")
			return
		}

		activateScript := venv.ActivateScript(path)
		pterm.Info.Printf("Activating venv at '%s' in a new subshell...\n", path)
		shellCmd := exec.Command("bash", "-c", fmt.Sprintf("source %s && bash", activateScript))
		shellCmd.Stdin = os.Stdin
		shellCmd.Stdout = os.Stdout
		shellCmd.Stderr = os.Stderr
		if err := shellCmd.Run(); err != nil {
			pterm.Error.Printf("Failed to activate venv: %v\n", err)
		}
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate [path]",
	Short: "Alias for venv activate",
	Args:  cobra.MaximumNArgs(1),
	Run:   venvActivateCmd.Run,
}

var createCmd = &cobra.Command{
	Use:   "create [path]",
	Short: "Alias for venv create",
	Args:  cobra.MaximumNArgs(1),
	Run:   venvCreateCmd.Run,
}

// venvPathArg resolves the target venv path from an optional
// positional argument, defaulting to "<cwd>/.venv".
func venvPathArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, ".venv")
}

func init() {
	venvCmd.AddCommand(venvCreateCmd)
	venvCmd.AddCommand(venvListCmd)
	venvCmd.AddCommand(venvActivateCmd)
	rootCmd.AddCommand(venvCmd)

	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(createCmd)
}
