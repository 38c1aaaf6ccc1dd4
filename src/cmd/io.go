package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"eggctl/src/internal/installer"
	"eggctl/src/internal/project"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <path_to_config>",
	Short: "Import dependencies from a manifest or requirements.txt",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		pterm.Info.Printf("Importing from %s...\n", path)

		wd, _ := os.Getwd()
		localCfg, localTomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load local eggctl.toml: %v\n", err)
			return
		}
		runtimeSel, changed, err := ensureRuntimeForProject(wd, &localCfg)
		if err != nil {
			pterm.Error.Printf("Failed to prepare runtime: %v\n", err)
			return
		}
		if changed {
			_ = project.Save(localTomlPath, localCfg)
		}
		in, err := newFacadeInstaller(wd, localCfg, runtimeSel)
		if err != nil {
			pterm.Error.Printf("Failed to init installer: %v\n", err)
			return
		}

		var reqs []string
		var depNameFallback []string

		if strings.HasSuffix(path, project.FileName) {
			cfg, err := project.Load(path)
			if err != nil {
				pterm.Error.Printf("Failed to read %s: %v\n", filepath.Base(path), err)
				return
			}
			if len(cfg.Deps) == 0 {
				pterm.Warning.Println("No dependencies found in [deps] section")
				return
			}
			for pkgName, pkgVersion := range cfg.Deps {
				spec := pkgName
				if pkgVersion != "" && pkgVersion != "*" {
					spec = fmt.Sprintf("%s==%s", pkgName, pkgVersion)
				}
				reqs = append(reqs, spec)
			}
		} else if strings.HasSuffix(strings.ToLower(path), ".txt") {
			reqs, err = parseRequirements(path)
			if err != nil {
				pterm.Error.Printf("Failed to parse requirements file: %v\n", err)
				return
			}
			if len(reqs) == 0 {
				pterm.Warning.Println("No installable entries found in requirements file")
				return
			}
			depNameFallback = reqs
		} else {
			pterm.Warning.Println("Import currently supports eggctl.toml and requirements.txt")
			return
		}

		ws, err := in.Install(context.Background(), afero.NewOsFs(), reqs, installer.InstallOptions{})
		if err != nil {
			pterm.Error.Printf("Import failed: %v\n", err)
			return
		}
		for _, req := range depNameFallback {
			if depName := requirementToDepName(req); depName != "" {
				localCfg.Deps[depName] = "*"
			}
		}
		for _, d := range ws.Distributions() {
			localCfg.Deps[project.NormalizeDepName(d.ProjectKey)] = d.Version.String()
		}
		if err := project.Save(localTomlPath, localCfg); err != nil {
			pterm.Warning.Printf("Imported but failed to update eggctl.toml: %v\n", err)
		}
		pterm.Success.Printf("Imported %d requirement(s)\n", len(reqs))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <output_path>",
	Short: "Export the current project's cache configuration",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		wd, _ := os.Getwd()
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		content := fmt.Sprintf("cache_mode=%s\ncache_dir=%s\n", cfg.Cache.Mode, cfg.Cache.GlobalDir)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			pterm.Error.Printf("Failed to export: %v\n", err)
			return
		}
		pterm.Success.Printf("Exported cache metadata to %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func parseRequirements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reqs := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-r ") || strings.HasPrefix(line, "--requirement ") {
			continue
		}
		if strings.HasPrefix(line, "-") {
			continue
		}
		if idx := strings.Index(line, " #"); idx > -1 {
			line = strings.TrimSpace(line[:idx])
		}
		if line != "" {
			reqs = append(reqs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}
