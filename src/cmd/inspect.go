package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"eggctl/src/internal/project"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// pipShowFields extracts the fields this package cares about from `pip
// show`'s colon-delimited key/value output.
func pipShowFields(pythonExe, name string) (map[string]string, error) {
	out, err := exec.Command(pythonExe, "-m", "pip", "show", name).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pip show %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	fields := map[string]string{}
	for _, line := range strings.Split(string(out), "\n") {
		idx := strings.Index(line, ": ")
		if idx < 0 {
			continue
		}
		fields[line[:idx]] = strings.TrimSpace(line[idx+2:])
	}
	return fields, nil
}

func splitPipList(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

var whyCmd = &cobra.Command{
	Use:   "why <package_name>",
	Short: "Show why a package was installed and its dependency path",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pkgName := args[0]
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project config: %v\n", err)
			return
		}
		rt, changed, err := ensureRuntimeForProject(wd, &cfg)
		if err != nil {
			pterm.Error.Printf("Failed to prepare runtime: %v\n", err)
			return
		}
		if changed {
			_ = project.Save(tomlPath, cfg)
		}

		fields, err := pipShowFields(rt.PythonExe, pkgName)
		if err != nil {
			pterm.Error.Printf("Failed to inspect %s: %v\n", pkgName, err)
			return
		}
		requiredBy := splitPipList(fields["Required-by"])
		if _, direct := cfg.Deps[project.NormalizeDepName(pkgName)]; direct {
			fmt.Printf("%s (%s) is a direct dependency in %s\n", pkgName, fields["Version"], project.FileName)
		}
		if len(requiredBy) == 0 {
			fmt.Printf("Nothing in the active environment depends on %s\n", pkgName)
			return
		}
		fmt.Printf("%s (%s) is required by:\n", pkgName, fields["Version"])
		for _, parent := range requiredBy {
			fmt.Printf("  %s\n", parent)
		}
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [package_name]",
	Short: "Show dependency tree",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project config: %v\n", err)
			return
		}
		rt, changed, err := ensureRuntimeForProject(wd, &cfg)
		if err != nil {
			pterm.Error.Printf("Failed to prepare runtime: %v\n", err)
			return
		}
		if changed {
			_ = project.Save(tomlPath, cfg)
		}

		roots := make([]string, 0, len(cfg.Deps))
		if len(args) == 1 {
			roots = append(roots, args[0])
		} else {
			for name := range cfg.Deps {
				roots = append(roots, name)
			}
			sort.Strings(roots)
		}
		if len(roots) == 0 {
			fmt.Println("No direct dependencies declared in", project.FileName)
			return
		}

		fmt.Printf("%s\n", cfg.Project.Name)
		for i, root := range roots {
			prefix := "├── "
			if i == len(roots)-1 {
				prefix = "└── "
			}
			fields, err := pipShowFields(rt.PythonExe, root)
			if err != nil {
				fmt.Printf("%s%s (not installed)\n", prefix, root)
				continue
			}
			fmt.Printf("%s%s (%s)\n", prefix, root, fields["Version"])
			childPrefix := "│   "
			if i == len(roots)-1 {
				childPrefix = "    "
			}
			children := splitPipList(fields["Requires"])
			for j, child := range children {
				childMark := "├── "
				if j == len(children)-1 {
					childMark = "└── "
				}
				childFields, err := pipShowFields(rt.PythonExe, child)
				if err != nil {
					fmt.Printf("%s%s%s\n", childPrefix, childMark, child)
					continue
				}
				fmt.Printf("%s%s%s (%s)\n", childPrefix, childMark, child, childFields["Version"])
			}
		}
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check for broken dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project config: %v\n", err)
			return
		}
		rt, changed, err := ensureRuntimeForProject(wd, &cfg)
		if err != nil {
			pterm.Error.Printf("[FAIL] Could not prepare a Python runtime: %v\n", err)
			return
		}
		if changed {
			_ = project.Save(tomlPath, cfg)
		}

		verOut, err := exec.Command(rt.PythonExe, "--version").CombinedOutput()
		if err != nil {
			pterm.Error.Printf("[FAIL] %s did not respond to --version: %v\n", rt.PythonExe, err)
			return
		}
		fmt.Printf("[OK] %s\n", strings.TrimSpace(string(verOut)))

		checkOut, err := exec.Command(rt.PythonExe, "-m", "pip", "check").CombinedOutput()
		if err != nil {
			pterm.Warning.Println("[WARN] Broken dependency graph:")
			fmt.Println(strings.TrimSpace(string(checkOut)))
		} else {
			fmt.Println("[OK] All dependencies verified")
		}

		missing := 0
		for name := range cfg.Deps {
			if _, err := pipShowFields(rt.PythonExe, name); err != nil {
				missing++
				pterm.Warning.Printf("[WARN] %s is declared in %s but not installed\n", name, project.FileName)
			}
		}
		if missing == 0 {
			fmt.Println("[OK] All declared dependencies are installed")
		}
	},
}

func init() {
	rootCmd.AddCommand(whyCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(doctorCmd)
}
