package cmd

import (
	"path/filepath"

	"eggctl/src/internal/appdir"
	"eggctl/src/internal/cache"
	"eggctl/src/internal/config"
	"eggctl/src/internal/index"
	"eggctl/src/internal/installer"
	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/project"
	"eggctl/src/internal/python"
)

var indexRegistry = index.NewRegistry(index.NewPyPIClient)

// newFacadeInstaller wires an installer.Installer from a project
// manifest and an already-selected runtime, the shape every CLI
// command that drives install/build/develop shares. wd's ".eggctl"
// subdirectory is used as the DestinationLayout root.
func newFacadeInstaller(wd string, cfg project.Config, runtimeSel *RuntimeSelection) (*installer.Installer, error) {
	globalDir := cfg.Cache.GlobalDir
	if globalDir == "" {
		globalDir = appdir.GlobalCacheDir()
	}
	cas, err := cache.New(globalDir)
	if err != nil {
		return nil, err
	}

	indexURL := cfg.Index.URL
	if indexURL == "" {
		indexURL = "https://pypi.org/pypi"
	}
	idx := indexRegistry.Get(cfg.Python.Version, indexURL, cfg.Index.FindLinks, cfg.Index.AllowHosts)

	runner := python.NewRunner(runtimeSel.PythonExe)

	layout := appdir.NewLayout(filepath.Join(wd, ".eggctl"))

	probe := interpreterprobe.New()
	sitePaths, _ := probe.SitePaths(runtimeSel.PythonExe)

	opts := config.Default().WithAllowHosts(cfg.Index.AllowHosts)
	in := installer.New(cas, idx, runner, layout, opts, cfg.Python.Version, sitePaths, probe)
	in.WithIndexRegistry(indexRegistry, indexURL)
	return in, nil
}
