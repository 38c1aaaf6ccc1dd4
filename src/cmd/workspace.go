package cmd

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// workspaceManifestName is the monorepo-root file listing member
// project directories, analogous to project.FileName for a single
// project but one level up the tree.
const workspaceManifestName = "eggctl-workspace.toml"

// workspaceManifest is the on-disk shape of workspaceManifestName.
type workspaceManifest struct {
	Members []string `toml:"members"`
}

func loadWorkspaceManifest(path string) (workspaceManifest, error) {
	var m workspaceManifest
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}
	_, err := toml.DecodeFile(path, &m)
	return m, err
}

func saveWorkspaceManifest(path string, m workspaceManifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(m)
}

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"workspaces"},
	Short:   "Manage monorepos and workspaces",
}

var wsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new workspace",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		path := filepath.Join(wd, workspaceManifestName)
		if _, err := os.Stat(path); err == nil {
			pterm.Warning.Printf("%s already exists\n", workspaceManifestName)
			return
		}
		if err := saveWorkspaceManifest(path, workspaceManifest{Members: []string{}}); err != nil {
			pterm.Error.Printf("Failed to initialize workspace: %v\n", err)
			return
		}
		pterm.Success.Printf("Initialized eggctl workspace at %s\n", path)
	},
}

var wsAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a project to the workspace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		memberPath := args[0]
		wd, _ := os.Getwd()
		manifestPath := filepath.Join(wd, workspaceManifestName)
		m, err := loadWorkspaceManifest(manifestPath)
		if err != nil {
			pterm.Error.Printf("Failed to load %s: %v\n", workspaceManifestName, err)
			return
		}
		for _, existing := range m.Members {
			if existing == memberPath {
				pterm.Info.Printf("%s is already a workspace member\n", memberPath)
				return
			}
		}
		m.Members = append(m.Members, memberPath)
		if err := saveWorkspaceManifest(manifestPath, m); err != nil {
			pterm.Error.Printf("Failed to save %s: %v\n", workspaceManifestName, err)
			return
		}
		pterm.Success.Printf("Added %s to workspace\n", memberPath)
	},
}

func init() {
	workspaceCmd.AddCommand(wsInitCmd)
	workspaceCmd.AddCommand(wsAddCmd)
	rootCmd.AddCommand(workspaceCmd)
}
