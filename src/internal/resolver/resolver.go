// Package resolver implements the core Resolver: the satisfaction
// check (spec.md §4.4.1), acquisition (§4.4.2), breadth-first
// dependency expansion (§4.4.3), the site-package policy (§4.4.4), the
// packaging-support auto-add heuristic (§4.4.5), and the error
// taxonomy (§4.4.6).
//
// The BFS loop itself has no direct teacher analogue — the teacher
// shells out to pip for the entire resolve in one call
// (resolver.Resolve, _examples/aaravmaloo-xe/src/internal/resolver/resolver.go)
// — so this file is grounded in spec.md's own pseudocode plus the
// teacher's concurrency idiom for the one place true parallelism
// helps: resolving independent top-level requirements side by side,
// here via github.com/sourcegraph/conc (a real pack dependency never
// wired in the teacher tree) in place of the teacher's raw
// sync.WaitGroup/goroutine pattern in engine.Installer.resolveParallel,
// and github.com/juju/errors (also unused in the teacher tree) for the
// UserError/SystemError cause-chaining spec.md §7 asks for.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eggctl/src/internal/appdir"
	"eggctl/src/internal/archive"
	"eggctl/src/internal/buildtool"
	"eggctl/src/internal/cache"
	"eggctl/src/internal/config"
	"eggctl/src/internal/distribution"
	"eggctl/src/internal/environment"
	"eggctl/src/internal/index"
	"eggctl/src/internal/python"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/telemetry"
	"eggctl/src/internal/workingset"

	"github.com/juju/errors"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sourcegraph/conc"
)

// packagingSupportKey is the project key of the packaging-support
// distribution the auto-add heuristic (§4.4.5) installs for
// namespace-package-declaring distributions that did not declare a
// dependency on it themselves.
const packagingSupportKey = "setuptools"

// MissingDistributionError is raised when no candidate for req exists
// locally or via any configured index, per spec.md §4.4.6.
type MissingDistributionError struct {
	Requirement requirement.Requirement
	Suggestion  string // a fuzzy-matched nearby project key, if any
}

func (e *MissingDistributionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("resolver: no distribution found for %s (did you mean %q?)", e.Requirement.String(), e.Suggestion)
	}
	return fmt.Sprintf("resolver: no distribution found for %s", e.Requirement.String())
}

// VersionConflictError is raised when the distribution already chosen
// for a project key does not satisfy a newly processed requirement on
// that key, per spec.md §4.4.3 and §4.4.6.
type VersionConflictError struct {
	Requirement requirement.Requirement
	Existing    distribution.Distribution
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("resolver: %s conflicts with already-resolved %s %s",
		e.Requirement.String(), e.Existing.ProjectKey, e.Existing.Version.String())
}

// Resolver ties an Environment, an IndexClient, an ArchiveHandler, and
// a build-tool invocation together to turn a set of top-level
// requirement specs into a conflict-free WorkingSet.
type Resolver struct {
	Env     *environment.Environment
	Index   index.Client
	CAS     *cache.CAS
	Runner  *python.Runner
	Layout  appdir.Layout
	Options config.ResolverOptions

	// processed tracks requirements already handled in this Resolve
	// call, bounding cycles per spec.md §4.4.3.
	processed map[string]bool
	best      map[string]distribution.Distribution
}

// New constructs a Resolver for one Resolve invocation.
func New(env *environment.Environment, idx index.Client, cas *cache.CAS, runner *python.Runner, layout appdir.Layout, opts config.ResolverOptions) *Resolver {
	return &Resolver{
		Env:     env,
		Index:   idx,
		CAS:     cas,
		Runner:  runner,
		Layout:  layout,
		Options: opts,
	}
}

// Resolve expands specs into a conflict-free WorkingSet, starting
// from an existing working set ws (which may be non-empty when
// incrementally extending a prior resolution).
func (r *Resolver) Resolve(ctx context.Context, specs []string, ws *workingset.WorkingSet) (*workingset.WorkingSet, error) {
	done := telemetry.StartSpan("resolver.resolve", "specs", len(specs))
	r.processed = map[string]bool{}
	r.best = map[string]distribution.Distribution{}
	if ws == nil {
		ws = workingset.New()
	}

	topLevel := make([]requirement.Requirement, 0, len(specs))
	for _, spec := range specs {
		req, err := requirement.Parse(spec)
		if err != nil {
			done("status", "error", "error", err.Error())
			return nil, errors.Annotatef(err, "resolver: parse %q", spec)
		}
		topLevel = append(topLevel, req)
	}

	// Independent top-level requirements can be satisfied
	// concurrently before the shared BFS stack takes over; this
	// mirrors the teacher's parallel-resolve idiom but through
	// conc.WaitGroup's panic-propagating group instead of a raw
	// WaitGroup + error channel.
	var wg conc.WaitGroup
	resolved := make([]*distribution.Distribution, len(topLevel))
	errs := make([]error, len(topLevel))
	for i, req := range topLevel {
		i, req := i, req
		wg.Go(func() {
			constrained, err := r.Options.Pins.Constrain(req)
			if err != nil {
				errs[i] = err
				return
			}
			dist, err := r.satisfy(ctx, constrained, ws)
			if err != nil {
				errs[i] = err
				return
			}
			resolved[i] = dist
		})
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			done("status", "error", "error", err.Error())
			return nil, err
		}
	}

	stack := make([]requirement.Requirement, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		stack = append(stack, topLevel[i])
	}
	for _, d := range resolved {
		if d != nil {
			ws.Add(*d)
			r.best[d.ProjectKey] = *d
			if err := r.maybeAddPackagingSupport(ctx, *d, ws); err != nil {
				done("status", "error", "error", err.Error())
				return nil, err
			}
		}
	}

	if err := r.expand(ctx, stack, ws); err != nil {
		done("status", "error", "error", err.Error())
		return nil, err
	}
	done("status", "ok", "resolved", ws.Len())
	return ws, nil
}

// expand is the breadth-first loop of spec.md §4.4.3.
func (r *Resolver) expand(ctx context.Context, stack []requirement.Requirement, ws *workingset.WorkingSet) error {
	for len(stack) > 0 {
		req := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		constrained, err := r.Options.Pins.Constrain(req)
		if err != nil {
			return err
		}
		if r.processed[constrained.Canonical()] {
			continue
		}

		dist, ok := r.best[constrained.Key]
		if !ok {
			if existing, has := ws.Get(constrained.Key); has {
				dist, ok = existing, true
			}
		}
		if !ok {
			found, err := r.bestMatch(constrained, ws)
			if err != nil {
				return err
			}
			if found != nil {
				dist, ok = *found, true
			}
		}
		if !ok {
			acquired, err := r.acquire(ctx, constrained)
			if err != nil {
				return err
			}
			dist = *acquired
			ws.Add(dist)
			r.best[dist.ProjectKey] = dist
			if err := r.maybeAddPackagingSupport(ctx, dist, ws); err != nil {
				return err
			}
		}

		if !constrained.Satisfies(dist.Version) {
			return &VersionConflictError{Requirement: constrained, Existing: dist}
		}

		if dist.Metadata != nil {
			deps := dist.Metadata.Requires(constrained.Extras)
			for i := len(deps) - 1; i >= 0; i-- {
				stack = append(stack, deps[i])
			}
		}
		r.processed[constrained.Canonical()] = true
	}
	return nil
}

// satisfy implements the satisfaction check, spec.md §4.4.1.
func (r *Resolver) satisfy(ctx context.Context, req requirement.Requirement, ws *workingset.WorkingSet) (*distribution.Distribution, error) {
	candidates := r.filteredCandidates(req)

	for _, c := range candidates {
		if c.Precedence == distribution.Develop {
			return &c, nil
		}
	}

	if _, exact := req.IsExactPin(); exact {
		if len(candidates) == 1 {
			return &candidates[0], nil
		}
		if len(candidates) == 0 {
			return r.acquire(ctx, req)
		}
	}

	if r.Options.PreferFinal {
		final := filterFinal(candidates)
		if len(final) > 0 {
			candidates = final
		}
	}

	if !r.Options.Newest {
		if len(candidates) > 0 {
			return &candidates[0], nil
		}
		return r.acquire(ctx, req)
	}

	available, err := r.Index.Obtain(ctx, req)
	if err != nil {
		return nil, err
	}
	if available == nil {
		if len(candidates) > 0 {
			return &candidates[0], nil
		}
		return nil, r.missingDistribution(req)
	}
	if len(candidates) == 0 {
		return r.acquire(ctx, req)
	}

	local := candidates[0]
	if r.Options.PreferFinal {
		availableFinal := available.Version.IsFinal()
		localFinal := local.Version.IsFinal()
		if availableFinal && !localFinal {
			return r.acquire(ctx, req)
		}
		if available.Version.GreaterThan(local.Version) {
			return r.acquire(ctx, req)
		}
		return &local, nil
	}
	if available.Version.GreaterThan(local.Version) {
		return r.acquire(ctx, req)
	}
	return &local, nil
}

// filteredCandidates applies the requirement, the site-package
// allow-list (§4.4.4), and sorts best-to-worst with the tie-break rule
// of §4.4.1 step 9: prefer the candidate whose directory is the
// download-cache directory, else the lexicographically last location.
func (r *Resolver) filteredCandidates(req requirement.Requirement) []distribution.Distribution {
	all := r.Env.Candidates(req.Key)
	var out []distribution.Distribution
	for _, c := range all {
		if !req.Satisfies(c.Version) {
			continue
		}
		if r.Env.IsSitePath(c.Location) && !r.allowedFromSitePackages(req.Key) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[j].Version.Compare(out[i].Version); cmp != 0 {
			return cmp < 0
		}
		if out[i].Precedence != out[j].Precedence {
			return out[i].Precedence > out[j].Precedence
		}
		iCache := r.CAS != nil && r.CAS.Contains(out[i].Location)
		jCache := r.CAS != nil && r.CAS.Contains(out[j].Location)
		if iCache != jCache {
			return iCache
		}
		return out[i].Location > out[j].Location
	})
	return out
}

// bestMatch is the BFS fallback's equivalent of Environment.BestMatch,
// but routed through filteredCandidates so a transitive requirement
// honors the site-package allow-list exactly like a top-level one
// (spec.md §4.4.4: "This filter applies even when site paths are
// present in the search path"). Environment.BestMatch must not be
// called directly here, since it has no notion of the allow-list.
func (r *Resolver) bestMatch(req requirement.Requirement, ws *workingset.WorkingSet) (*distribution.Distribution, error) {
	candidates := r.filteredCandidates(req)
	if len(candidates) == 0 {
		return nil, nil
	}
	if conflict, has := ws.Conflicts(req); has {
		return nil, &VersionConflictError{Requirement: req, Existing: conflict}
	}
	return &candidates[0], nil
}

func (r *Resolver) allowedFromSitePackages(key string) bool {
	if !r.Options.IncludeSitePackages {
		return false
	}
	for _, pattern := range r.Options.AllowedEggsFromSitePackages {
		if ok, _ := filepath.Match(pattern, key); ok {
			return true
		}
	}
	return false
}

func filterFinal(dists []distribution.Distribution) []distribution.Distribution {
	var out []distribution.Distribution
	for _, d := range dists {
		if d.Version.IsFinal() {
			out = append(out, d)
		}
	}
	return out
}

func (r *Resolver) missingDistribution(req requirement.Requirement) error {
	suggestion := r.suggestNearestKey(req.Key)
	return &MissingDistributionError{Requirement: req, Suggestion: suggestion}
}

// acquire implements spec.md §4.4.2: fetch, materialize, rescan, and
// append to the working set.
func (r *Resolver) acquire(ctx context.Context, req requirement.Requirement) (*distribution.Distribution, error) {
	done := telemetry.StartSpan("resolver.acquire", "key", req.Key)
	candidate, err := r.Index.Obtain(ctx, req)
	if err != nil {
		done("status", "error", "error", err.Error())
		return nil, errors.Trace(err)
	}
	if candidate == nil {
		err := r.missingDistribution(req)
		done("status", "error", "error", err.Error())
		return nil, err
	}

	blobPath, err := r.Index.Download(ctx, *candidate, r.CAS)
	if err != nil {
		done("status", "error", "error", err.Error())
		return nil, errors.Annotatef(err, "resolver: download %s", candidate.ProjectKey)
	}

	materialized, err := r.materialize(ctx, *candidate, blobPath)
	if err != nil {
		done("status", "error", "error", err.Error())
		return nil, err
	}
	done("status", "ok", "version", materialized.Version.String())
	return materialized, nil
}

func (r *Resolver) materialize(ctx context.Context, candidate distribution.Distribution, blobPath string) (*distribution.Distribution, error) {
	if err := r.Layout.Ensure(); err != nil {
		return nil, err
	}

	switch candidate.Precedence {
	case distribution.BinaryArchive:
		kind, err := archive.Classify(blobPath)
		if err != nil {
			return nil, errors.Annotate(err, "resolver: classify archive")
		}
		var location string
		if kind == archive.Directory {
			location, err = archive.CopyTree(blobPath, r.Layout.EggsDir())
		} else if archive.ShouldUnzip(candidate.Metadata, r.Options.AlwaysUnzip) {
			dest := filepath.Join(r.Layout.EggsDir(), strings.TrimSuffix(filepath.Base(blobPath), filepath.Ext(blobPath)))
			err = archive.Unpack(ctx, blobPath, dest)
			location = dest
		} else {
			location, err = archive.CopyFile(blobPath, r.Layout.EggsDir())
		}
		if err != nil {
			return nil, errors.Annotate(err, "resolver: materialize binary archive")
		}
		if err := archive.RecompileBytecode(ctx, r.Runner.Run, location); err != nil {
			return nil, errors.Annotate(err, "resolver: recompile bytecode")
		}
		candidate.Location = location
		if meta, err := findMetadata(location); err == nil && meta != nil {
			candidate.Metadata = meta
		}
		return &candidate, nil

	default: // SourceArchive, Checkout: build
		scratch := filepath.Join(r.Layout.Root, "scratch", candidate.ProjectKey)
		srcDir := blobPath
		if kind, err := archive.Classify(blobPath); err == nil && kind != archive.Directory {
			unpackDir := filepath.Join(scratch, "src")
			if err := archive.Unpack(ctx, blobPath, unpackDir); err != nil {
				return nil, errors.Annotate(err, "resolver: unpack source archive")
			}
			srcDir = unpackDir
		}
		result, err := buildtool.Run(r.Runner, buildtool.Options{
			SourceDir:            srcDir,
			DistDir:              filepath.Join(scratch, "dist"),
			PackagingSupportPath: r.Layout.EggsDir(),
			DisableSiteInit:      true,
		})
		if err != nil {
			return nil, errors.Annotate(err, "resolver: build")
		}
		if len(result.ArchivePaths) > 1 {
			telemetry.Event("resolver.build.multiple_outputs", "key", candidate.ProjectKey, "count", len(result.ArchivePaths))
		}
		var last *distribution.Distribution
		for _, archivePath := range result.ArchivePaths {
			dest := filepath.Join(r.Layout.EggsDir(), filepath.Base(archivePath))
			if err := renameInto(archivePath, dest); err != nil {
				return nil, err
			}
			if err := archive.RecompileBytecode(ctx, r.Runner.Run, dest); err != nil {
				return nil, errors.Annotate(err, "resolver: recompile bytecode")
			}
			built := candidate
			built.Location = dest
			built.Precedence = distribution.BinaryArchive
			last = &built
		}
		if last == nil {
			return nil, fmt.Errorf("resolver: build produced no usable distribution for %s", candidate.ProjectKey)
		}
		return last, nil
	}
}

func renameInto(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

// findMetadata locates and parses the *.dist-info/METADATA (or
// *.egg-info/PKG-INFO) sibling inside a freshly materialized
// distribution directory, so a remotely-acquired distribution's
// dependencies are available to the BFS's expansion step immediately
// after acquisition rather than only on the next Environment.Scan.
func findMetadata(location string) (*distribution.PackageMetadata, error) {
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		lower := strings.ToLower(name)
		if !e.IsDir() {
			continue
		}
		if strings.HasSuffix(lower, ".dist-info") {
			if meta, err := distribution.ParseMetadataFile(filepath.Join(location, name, "METADATA")); err == nil {
				return meta, nil
			}
		}
		if strings.HasSuffix(lower, ".egg-info") {
			if meta, err := distribution.ParseMetadataFile(filepath.Join(location, name, "PKG-INFO")); err == nil {
				return meta, nil
			}
		}
	}
	return nil, nil
}

// maybeAddPackagingSupport implements spec.md §4.4.5: if a newly
// added distribution declares namespace packages but not a dependency
// on the packaging-support distribution, add it implicitly.
func (r *Resolver) maybeAddPackagingSupport(ctx context.Context, d distribution.Distribution, ws *workingset.WorkingSet) error {
	if d.Metadata == nil || len(d.Metadata.NamespacePackages()) == 0 {
		return nil
	}
	for _, dep := range d.Metadata.Requires(nil) {
		if dep.Key == packagingSupportKey {
			return nil
		}
	}
	if _, has := ws.Get(packagingSupportKey); has {
		return nil
	}
	if d.Precedence == distribution.Develop {
		telemetry.Event("resolver.packaging_support.develop_warning", "key", d.ProjectKey)
	}
	req := requirement.New(packagingSupportKey, nil, nil)
	constrained, err := r.Options.Pins.Constrain(req)
	if err != nil {
		return err
	}
	dist, err := r.satisfy(ctx, constrained, ws)
	if err != nil {
		return err
	}
	ws.Add(*dist)
	r.best[dist.ProjectKey] = *dist
	return nil
}

// suggestNearestKey provides the fuzzy "did you mean" suggestion for a
// missing project key, per SPEC_FULL.md's S8 scenario, returning the
// key the local Environment already knows about with the smallest
// edit distance (ties broken alphabetically).
func (r *Resolver) suggestNearestKey(key string) string {
	known := r.Env.KnownKeys()
	if len(known) == 0 {
		return ""
	}
	sort.Strings(known)
	best, bestDist := "", -1
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(key, k); bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
