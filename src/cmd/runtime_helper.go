package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/project"
	"eggctl/src/internal/python"
	"eggctl/src/internal/telemetry"
	"eggctl/src/internal/venv"
)

// RuntimeSelection is the interpreter and site directory a command
// ends up targeting for one invocation: either the project's own
// ".venv", or whatever interpreter is already active/configured.
type RuntimeSelection struct {
	PythonExe      string
	SitePackages   string
	ActivationPath string
	VenvName       string
	IsVenv         bool
}

// ensureRuntimeForProject locates (creating if absent) the project's
// target virtual environment, grounded in the interpreter the
// manifest names or the active VIRTUAL_ENV, per venv.EffectivePythonPath.
func ensureRuntimeForProject(wd string, cfg *project.Config) (selection *RuntimeSelection, configChanged bool, retErr error) {
	done := telemetry.StartSpan("runtime.ensure", "working_dir", wd, "python_version", cfg.Python.Version)
	defer func() {
		fields := []any{
			"status", "ok",
			"changed_config", configChanged,
			"is_venv", selection != nil && selection.IsVenv,
		}
		if retErr != nil {
			fields[1] = "error"
			fields = append(fields, "error", retErr.Error())
		}
		done(fields...)
	}()

	baseExe := cfg.Python.Executable
	if baseExe == "" {
		found, err := python.FindOnPath("python3", "python")
		if err != nil {
			retErr = err
			return nil, false, retErr
		}
		baseExe = found
		cfg.Python.Executable = baseExe
		configChanged = true
	}

	venvPath := filepath.Join(wd, ".venv")
	if active := venv.ActiveVenv(); active != "" {
		venvPath = active
	} else if !venv.Exists(venvPath) {
		createDone := telemetry.StartSpan("runtime.venv.create", "venv_path", venvPath)
		if err := venv.Create(venvPath, baseExe); err != nil {
			createDone("status", "error", "error", err.Error())
			retErr = fmt.Errorf("create venv at %s: %w", venvPath, err)
			return nil, configChanged, retErr
		}
		createDone("status", "ok")
	}

	venvExe := venv.PythonExe(venvPath)
	if _, err := os.Stat(venvExe); err != nil {
		retErr = fmt.Errorf("venv python not found: %s", venvExe)
		return nil, configChanged, retErr
	}

	probeDone := telemetry.StartSpan("runtime.interpreter.probe", "python_exe", venvExe)
	probe := interpreterprobe.New()
	version, err := probe.Version(venvExe)
	if err != nil {
		probeDone("status", "error", "error", err.Error())
		retErr = err
		return nil, configChanged, retErr
	}
	sitePaths, err := probe.SitePaths(venvExe)
	if err != nil {
		probeDone("status", "error", "error", err.Error())
		retErr = err
		return nil, configChanged, retErr
	}
	probeDone("status", "ok", "version", version, "site_paths", len(sitePaths))

	if cfg.Python.Version == "" || cfg.Python.Version != version {
		cfg.Python.Version = version
		configChanged = true
	}

	siteDir := ""
	if len(sitePaths) > 0 {
		siteDir = sitePaths[0]
	} else {
		siteDir = venv.SitePackagesDir(venvPath, version)
	}
	_ = os.MkdirAll(siteDir, 0755)

	selection = &RuntimeSelection{
		PythonExe:      venvExe,
		SitePackages:   siteDir,
		ActivationPath: filepath.Dir(venvExe),
		VenvName:       ".venv",
		IsVenv:         true,
	}
	return selection, configChanged, nil
}
