package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"eggctl/src/internal/installer"
	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/lockfile"
	"eggctl/src/internal/project"
	"eggctl/src/internal/python"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync installed packages with eggctl.toml",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		reqs := make([]string, 0, len(cfg.Deps))
		for name, version := range cfg.Deps {
			if version != "" && version != "*" {
				reqs = append(reqs, fmt.Sprintf("%s==%s", name, version))
				continue
			}
			reqs = append(reqs, name)
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
		if _, err := in.Install(context.Background(), afero.NewOsFs(), reqs, installer.InstallOptions{}); err != nil {
			pterm.Error.Printf("Sync failed: %v\n", err)
			return
		}
		pterm.Success.Println("Project synced from eggctl.toml")
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Resolve and lock all dependencies in eggctl.toml",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		reqs := make([]string, 0, len(cfg.Deps))
		for name, version := range cfg.Deps {
			if version != "" && version != "*" {
				reqs = append(reqs, fmt.Sprintf("%s==%s", name, version))
				continue
			}
			reqs = append(reqs, name)
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
		ws, err := in.Install(context.Background(), afero.NewOsFs(), reqs, installer.InstallOptions{})
		if err != nil {
			pterm.Error.Printf("Lock failed: %v\n", err)
			return
		}
		for _, d := range ws.Distributions() {
			cfg.Deps[project.NormalizeDepName(d.ProjectKey)] = d.Version.String()
		}
		if err := project.Save(tomlPath, cfg); err != nil {
			pterm.Error.Printf("Failed to update eggctl.toml: %v\n", err)
			return
		}

		lock := lockfile.FromDistributions(cfg.Python.Version, runtime.GOOS, runtime.GOARCH, ws.Distributions())
		lockPath := tomlPath[:len(tomlPath)-len(project.FileName)] + "eggctl.lock"
		if err := lock.Save(lockPath); err != nil {
			pterm.Warning.Printf("Locked dependencies but failed to write lockfile: %v\n", err)
			return
		}
		pterm.Success.Printf("Locked %d dependencies\n", ws.Len())
	},
}

var formatCmd = &cobra.Command{
	Use:   "format [path]",
	Short: "Format Python code using black if available",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		runCmd.Run(cmd, []string{"--", "python", "-m", "black", target})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print eggctl version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("eggctl 0.1.0")
		fmt.Printf("goos=%s goarch=%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the global eggctl cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Show cache directory",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		fmt.Println(cfg.Cache.GlobalDir)
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		if err := os.RemoveAll(cfg.Cache.GlobalDir); err != nil {
			pterm.Error.Printf("Failed to clean cache: %v\n", err)
			return
		}
		pterm.Success.Println("Cache cleaned")
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune stale cache metadata",
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Info.Println("Prune currently keeps CAS blobs and removes no files.")
	},
}

var pythonCmd = &cobra.Command{
	Use:   "python",
	Short: "Manage Python installations",
}

var pythonFindCmd = &cobra.Command{
	Use:   "find [name]",
	Short: "Print the located interpreter executable path",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := "python3"
		if len(args) > 0 {
			name = args[0]
		}
		exe, err := python.FindOnPath(name, "python")
		if err != nil {
			pterm.Error.Printf("Python not found: %v\n", err)
			return
		}
		fmt.Println(exe)
	},
}

var pythonPinCmd = &cobra.Command{
	Use:   "pin <executable>",
	Short: "Pin project interpreter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		useCmd.Run(cmd, args)
	},
}

var pythonVersionCmd = &cobra.Command{
	Use:   "version [executable]",
	Short: "Print an interpreter's version tag",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exe := ""
		if len(args) > 0 {
			exe = args[0]
		} else if found, err := python.FindOnPath("python3", "python"); err == nil {
			exe = found
		}
		if exe == "" {
			pterm.Error.Println("No interpreter found")
			return
		}
		v, err := interpreterprobe.New().Version(exe)
		if err != nil {
			pterm.Error.Printf("Failed to probe version: %v\n", err)
			return
		}
		fmt.Println(v)
	},
}

var pipCmd = &cobra.Command{
	Use:   "pip",
	Short: "Pip-compatible commands via the project runtime",
}

var pipInstallCmd = &cobra.Command{
	Use:   "install <pkg>...",
	Short: "Install packages (alias for add)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addCmd.Run(cmd, args)
	},
}

var pipUninstallCmd = &cobra.Command{
	Use:   "uninstall <pkg>...",
	Short: "Remove packages (alias for remove)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		removeCmd.Run(cmd, args)
	},
}

var pipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages",
	Run: func(cmd *cobra.Command, args []string) {
		listCmd.Run(cmd, args)
	},
}

var pipShowCmd = &cobra.Command{
	Use:   "show <pkg>",
	Short: "Show package details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkCmd.Run(cmd, args)
	},
}

var pipTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show dependency tree",
	Run: func(cmd *cobra.Command, args []string) {
		treeCmd.Run(cmd, args)
	},
}

var pipCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check dependency health",
	Run: func(cmd *cobra.Command, args []string) {
		doctorCmd.Run(cmd, args)
	},
}

var pipSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync from eggctl.toml",
	Run: func(cmd *cobra.Command, args []string) {
		syncCmd.Run(cmd, args)
	},
}

var pipCompileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile/lock dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		lockCmd.Run(cmd, args)
	},
}

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Manage and run Python tools",
}

var toolRunCmd = &cobra.Command{
	Use:                "run -- <command>",
	Short:              "Run a tool in the project runtime",
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		runCmd.Run(cmd, args)
	},
}

var toolInstallCmd = &cobra.Command{
	Use:   "install <tool>...",
	Short: "Install tools as dependencies",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addCmd.Run(cmd, args)
	},
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tool dependencies in eggctl.toml",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, _, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
			return
		}
		keys := make([]string, 0, len(cfg.Deps))
		for k := range cfg.Deps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s %s\n", k, cfg.Deps[k])
		}
	},
}

var toolUpdateCmd = &cobra.Command{
	Use:   "update <tool>...",
	Short: "Update tools",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addCmd.Run(cmd, args)
	},
}

var toolUninstallCmd = &cobra.Command{
	Use:   "uninstall <tool>...",
	Short: "Uninstall tools",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		removeCmd.Run(cmd, args)
	},
}

var toolUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade all tool dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		syncCmd.Run(cmd, args)
	},
}

var toolSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync tool dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		syncCmd.Run(cmd, args)
	},
}

var toolDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Show project tool directory",
	Run: func(cmd *cobra.Command, args []string) {
		wd, _ := os.Getwd()
		cfg, tomlPath, err := project.LoadOrCreate(wd)
		if err != nil {
			pterm.Error.Printf("Failed to load project: %v\n", err)
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
		fmt.Println(rt.SitePackages)
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd, cacheCleanCmd, cachePruneCmd)

	pythonCmd.AddCommand(
		pythonFindCmd,
		pythonPinCmd,
		pythonVersionCmd,
	)

	pipCmd.AddCommand(
		pipInstallCmd,
		pipUninstallCmd,
		pipListCmd,
		pipShowCmd,
		pipTreeCmd,
		pipCheckCmd,
		pipSyncCmd,
		pipCompileCmd,
	)

	toolCmd.AddCommand(
		toolRunCmd,
		toolInstallCmd,
		toolListCmd,
		toolUpdateCmd,
		toolUninstallCmd,
		toolUpgradeCmd,
		toolSyncCmd,
		toolDirCmd,
	)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(pythonCmd)
	rootCmd.AddCommand(pipCmd)
	rootCmd.AddCommand(toolCmd)

	// Keep shorthand mapping to tool run.
	rootCmd.AddCommand(&cobra.Command{
		Use:                "x -- <command>",
		Short:              "Alias for tool run",
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			filtered := make([]string, 0, len(args))
			for _, a := range args {
				if strings.TrimSpace(a) != "" {
					filtered = append(filtered, a)
				}
			}
			toolRunCmd.Run(cmd, filtered)
		},
	})
}
