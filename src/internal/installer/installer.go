// Package installer implements the facade spec.md §6 calls the
// "Resolver facade": Install, Build, Develop — the three operations a
// CLI layer drives. It wires the solution cache, the Resolver's BFS,
// the script generator, and the develop-install path into one
// coherent entry surface.
//
// Adapted from the teacher's engine.Installer
// (_examples/aaravmaloo-xe/src/internal/engine/install.go), which
// combined solution caching (cache.CAS.SaveSolution/LoadSolution),
// telemetry spans per stage, and a parallel download/extract worker
// pool. This version replaces the teacher's flat wheel-download loop
// with the resolver's own acquisition path (which already downloads
// and materializes each distribution as it is discovered), since the
// BFS here interleaves resolution and acquisition rather than solving
// first and downloading second — but keeps the teacher's span-per-
// stage telemetry shape and solution-cache-short-circuit idiom
// verbatim.
package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"eggctl/src/internal/appdir"
	"eggctl/src/internal/buildtool"
	"eggctl/src/internal/cache"
	"eggctl/src/internal/config"
	"eggctl/src/internal/developinstall"
	"eggctl/src/internal/distribution"
	"eggctl/src/internal/environment"
	"eggctl/src/internal/index"
	"eggctl/src/internal/interpreterprobe"
	"eggctl/src/internal/pinmap"
	"eggctl/src/internal/python"
	"eggctl/src/internal/resolver"
	"eggctl/src/internal/scriptgen"
	"eggctl/src/internal/telemetry"
	"eggctl/src/internal/workingset"

	"github.com/spf13/afero"
)

// Installer is the process-facing facade over Resolve/Build/Develop.
type Installer struct {
	CAS     *cache.CAS
	Index   index.Client
	Runner  *python.Runner
	Layout  appdir.Layout
	Options config.ResolverOptions

	InterpreterTag string   // e.g. "3.11", used for the solution-cache key and passed to environment.Scan
	SitePaths      []string // interpreter site paths, for the site-package filter
	Probe          *interpreterprobe.Probe // locates the real site/sitecustomize modules for GenerateScripts' site-safe mode

	// IndexRegistry and IndexURL, when both set, let a single Install
	// call override the index client's find-links/allow-hosts for that
	// call only (InstallOptions.Links/Index/AllowHosts), instead of
	// every call sharing the one Client baked at construction time.
	IndexRegistry *index.Registry
	IndexURL      string
}

// New wires a ready-to-use Installer. probe may be nil if the caller
// never intends to call GenerateScripts in site-safe mode.
func New(cas *cache.CAS, idx index.Client, runner *python.Runner, layout appdir.Layout, opts config.ResolverOptions, interpreterTag string, sitePaths []string, probe *interpreterprobe.Probe) *Installer {
	return &Installer{
		CAS:            cas,
		Index:          idx,
		Runner:         runner,
		Layout:         layout,
		Options:        opts,
		InterpreterTag: interpreterTag,
		SitePaths:      sitePaths,
		Probe:          probe,
	}
}

// WithIndexRegistry lets a facade wire the same Registry/URL
// newFacadeInstaller already used to build idx, so a later Install call
// can request per-call find-links/allow-hosts without reconstructing
// the Installer.
func (in *Installer) WithIndexRegistry(reg *index.Registry, indexURL string) *Installer {
	in.IndexRegistry = reg
	in.IndexURL = indexURL
	return in
}

// InstallOptions carries the per-call overrides spec.md §6's
// install(...) parameter list names, replacing positional arguments
// with named fields. Every field is optional; a zero InstallOptions
// reproduces the Installer's own Options/Index/SitePaths defaults.
type InstallOptions struct {
	Dest       string   // overrides the Installer's Layout root for this call
	Links      []string // additional find-links, merged in via IndexRegistry
	Index      string   // overrides the index URL for this call
	Executable string   // overrides the Installer's Runner executable for this call
	Path       []string // additional site-package paths to scan alongside SitePaths

	WorkingSet *workingset.WorkingSet // seeds incremental expansion instead of an empty set

	Newest                      *bool // nil leaves the Installer's own Options.Newest untouched
	Versions                    map[string]string
	UseDependencyLinks          bool
	AlwaysUnzip                 bool
	IncludeSitePackages         bool
	AllowedEggsFromSitePackages []string
	AllowHosts                  []string
}

// cachedGraph is what solution-cache entries persist: the fully
// resolved working set's distributions, keyed by spec+interpreter via
// cache.SolutionKey, so an unchanged requirement set skips resolution
// entirely on the next Install.
type cachedGraph struct {
	InterpreterTag string                      `json:"interpreter_tag"`
	Specs          []string                    `json:"specs"`
	Packages       []distribution.Distribution `json:"packages"`
}

// Install implements the `install` operation of spec.md §6: resolve
// specs against the local environment and index, acquiring and
// materializing whatever the working set is missing, and return the
// resulting WorkingSet. opts overrides the Installer's own defaults for
// this call only; a zero InstallOptions behaves exactly as a bare
// Install(ctx, fs, specs) used to.
func (in *Installer) Install(ctx context.Context, fs afero.Fs, specs []string, opts InstallOptions) (result *workingset.WorkingSet, retErr error) {
	done := telemetry.StartSpan("installer.install", "specs", len(specs))
	defer func() {
		fields := []any{"status", "ok"}
		if retErr != nil {
			fields = []any{"status", "error", "error", retErr.Error()}
		} else {
			fields = append(fields, "resolved_packages", result.Len())
		}
		done(fields...)
	}()

	layout := in.Layout
	if opts.Dest != "" {
		layout = appdir.NewLayout(opts.Dest)
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	cacheKey := cache.SolutionKey(in.InterpreterTag, specs)
	cacheDone := telemetry.StartSpan("installer.install.solution_cache.load")
	var graph cachedGraph
	hit, err := in.CAS.LoadSolution(cacheKey, &graph)
	if err != nil {
		cacheDone("status", "error", "error", err.Error())
		return nil, err
	}
	cacheDone("status", "ok", "hit", hit)

	ro := in.resolverOptions(opts)
	if hit && ro.InstallFromCache {
		return workingset.FromSlice(graph.Packages), nil
	}

	paths := append([]string{layout.EggsDir(), layout.DevelopEggsDir()}, opts.Path...)
	sitePaths := in.SitePaths
	env, err := environment.Scan(fs, paths, sitePaths, in.InterpreterTag)
	if err != nil {
		return nil, err
	}

	idx := in.indexFor(opts)
	runner := in.Runner
	if opts.Executable != "" {
		runner = python.NewRunner(opts.Executable)
	}

	seed := opts.WorkingSet
	if seed == nil {
		seed = workingset.New()
	}

	res := resolver.New(env, idx, in.CAS, runner, layout, ro)
	resolveDone := telemetry.StartSpan("installer.install.resolve", "requirements", len(specs))
	ws, err := res.Resolve(ctx, specs, seed)
	if err != nil {
		resolveDone("status", "error", "error", err.Error())
		return nil, err
	}
	resolveDone("status", "ok", "resolved_packages", ws.Len())

	saveDone := telemetry.StartSpan("installer.install.solution_cache.save")
	graph = cachedGraph{InterpreterTag: in.InterpreterTag, Specs: specs, Packages: ws.Distributions()}
	if err := in.CAS.SaveSolution(cacheKey, graph); err != nil {
		saveDone("status", "error", "error", err.Error())
		return nil, err
	}
	saveDone("status", "ok")

	return ws, nil
}

// resolverOptions applies opts' overrides on top of in.Options for a
// single Install call, leaving in.Options itself untouched.
func (in *Installer) resolverOptions(opts InstallOptions) config.ResolverOptions {
	ro := in.Options
	if opts.Newest != nil {
		ro.Newest = *opts.Newest
	}
	if len(opts.Versions) > 0 {
		ro = ro.WithPins(pinmap.New(opts.Versions))
	}
	if opts.UseDependencyLinks {
		ro.UseDependencyLinks = true
	}
	if opts.AlwaysUnzip {
		ro.AlwaysUnzip = true
	}
	if opts.IncludeSitePackages {
		ro = ro.WithSitePackages(true, opts.AllowedEggsFromSitePackages)
	}
	if len(opts.AllowHosts) > 0 {
		ro = ro.WithAllowHosts(opts.AllowHosts)
	}
	return ro
}

// indexFor returns the index.Client this call should use: in.Index
// unchanged unless opts asks for a different index URL, extra
// find-links, or a narrower allow-list, in which case IndexRegistry
// resolves (and memoizes) the right Client for that combination.
func (in *Installer) indexFor(opts InstallOptions) index.Client {
	if in.IndexRegistry == nil {
		return in.Index
	}
	if opts.Index == "" && len(opts.Links) == 0 && len(opts.AllowHosts) == 0 {
		return in.Index
	}
	indexURL := opts.Index
	if indexURL == "" {
		indexURL = in.IndexURL
	}
	return in.IndexRegistry.Get(in.InterpreterTag, indexURL, opts.Links, opts.AllowHosts)
}

// Build implements the `build` operation: invoke the build tool
// against a single source directory and return the produced archive
// paths, without touching the working set or the destination layout.
func (in *Installer) Build(ctx context.Context, sourceDir string, verbose bool) (paths []string, retErr error) {
	done := telemetry.StartSpan("installer.build", "source_dir", sourceDir)
	defer func() {
		if retErr != nil {
			done("status", "error", "error", retErr.Error())
			return
		}
		done("status", "ok", "archives", len(paths))
	}()

	packagingSupport, err := in.packagingSupportPath(ctx)
	if err != nil {
		return nil, err
	}

	result, err := buildtool.Run(in.Runner, buildtool.Options{
		SourceDir:            sourceDir,
		DistDir:              filepath.Join(sourceDir, "dist"),
		PackagingSupportPath: packagingSupport,
		Verbose:              verbose,
	})
	if err != nil {
		return nil, err
	}
	return result.ArchivePaths, nil
}

// Develop implements the `develop` operation: run the build script's
// develop subcommand and move the resulting link file into
// develop-eggs-dir, returning its path.
func (in *Installer) Develop(ctx context.Context, sourceDir string) (linkPath string, retErr error) {
	done := telemetry.StartSpan("installer.develop", "source_dir", sourceDir)
	defer func() {
		if retErr != nil {
			done("status", "error", "error", retErr.Error())
			return
		}
		done("status", "ok", "link_file", linkPath)
	}()

	if err := in.Layout.Ensure(); err != nil {
		return "", err
	}
	packagingSupport, err := in.packagingSupportPath(ctx)
	if err != nil {
		return "", err
	}
	return developinstall.Run(in.Runner, developinstall.Options{
		SourceDir:            sourceDir,
		DestDir:              in.Layout.DevelopEggsDir(),
		PackagingSupportPath: packagingSupport,
	})
}

// GenerateScripts produces launcher scripts for entries from a
// resolved WorkingSet, in either classic or site-safe mode.
func (in *Installer) GenerateScripts(ws *workingset.WorkingSet, entries []scriptgen.EntryPoint, siteSafe bool, relativeBase string) ([]string, error) {
	gen := scriptgen.New(scriptgen.Options{
		Dest:                in.Layout.BinDir(),
		Executable:          in.Runner.Executable,
		RelativeBase:        relativeBase,
		Probe:               in.Probe,
		IncludeSitePackages: in.Options.IncludeSitePackages,
	})
	if siteSafe {
		return gen.GenerateSiteSafe(ws.Distributions(), entries)
	}
	return gen.GenerateClassic(ws.Distributions(), entries)
}

// packagingSupportPath locates the setuptools distribution already
// present in the local environment, since both Build and Develop
// require it importable on the transient runner's path before the
// build script executes.
func (in *Installer) packagingSupportPath(ctx context.Context) (string, error) {
	paths := []string{in.Layout.EggsDir(), in.Layout.DevelopEggsDir()}
	env, err := environment.Scan(afero.NewOsFs(), paths, in.SitePaths, in.InterpreterTag)
	if err != nil {
		return "", err
	}
	candidates := env.Candidates("setuptools")
	if len(candidates) == 0 {
		return "", fmt.Errorf("installer: setuptools not found in eggs-dir or develop-eggs-dir; install it first")
	}
	return candidates[0].Location, nil
}
