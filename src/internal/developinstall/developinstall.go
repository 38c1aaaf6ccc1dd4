// Package developinstall implements DevelopInstaller, spec.md §4.8:
// given a source directory and a destination, it writes a transient
// runner that sets up the packaging-support path, invokes the
// build-script with a "develop" subcommand targeting a scratch
// directory, then renames the single produced link file into the
// destination. Every side effect is tracked on an undo.Stack and
// reversed on exit, whether success or failure.
//
// Grounded in the same subprocess-invocation idiom as
// eggctl/src/internal/buildtool (itself grounded in the teacher's
// resolver.Resolve,
// _examples/aaravmaloo-xe/src/internal/resolver/resolver.go), with
// the scoped LIFO cleanup generalized into eggctl/src/internal/undo —
// the teacher never had a develop-install feature, so this component
// is new, built in the teacher's subprocess/cleanup idiom rather than
// copied from a teacher file.
package developinstall

import (
	"fmt"
	"os"
	"path/filepath"

	"eggctl/src/internal/python"
	"eggctl/src/internal/undo"
)

// Options configures one develop-install invocation.
type Options struct {
	SourceDir            string // directory containing the build script
	DestDir              string // develop-eggs-dir
	PackagingSupportPath string
	BuildScriptName      string // defaults to "setup.py"
	DisableSiteInit      bool
}

const runnerTemplate = `import sys
sys.path.insert(0, %q)
import os
os.chdir(%q)
sys.argv = [%q, "develop", "--multi-version", "--install-dir", %q]
with open(%q) as f:
    code = compile(f.read(), %q, "exec")
exec(code, {"__name__": "__main__", "__file__": %q})
`

// Run performs one develop-install, returning the path of the link
// file it moved into dest. Every registered undo action runs, in LIFO
// order, before Run returns; the move into dest is undone only on error.
func Run(runner *python.Runner, opts Options) (string, error) {
	scope := undo.New()
	var ok bool
	defer func() {
		_ = scope.Close()
	}()

	scriptName := opts.BuildScriptName
	if scriptName == "" {
		scriptName = "setup.py"
	}
	buildScript := filepath.Join(opts.SourceDir, scriptName)
	if _, err := os.Stat(buildScript); err != nil {
		return "", fmt.Errorf("developinstall: no build script at %s: %w", buildScript, err)
	}

	scratch, err := os.MkdirTemp("", "eggctl-develop-*")
	if err != nil {
		return "", err
	}
	scope.Push(func() error { return os.RemoveAll(scratch) })

	runnerSrc := fmt.Sprintf(runnerTemplate,
		opts.PackagingSupportPath,
		opts.SourceDir,
		buildScript,
		scratch,
		buildScript,
		buildScript,
		buildScript,
	)

	runnerFile, err := os.CreateTemp("", "eggctl-develop-runner-*.py")
	if err != nil {
		return "", err
	}
	runnerPath := runnerFile.Name()
	scope.Push(func() error { return os.Remove(runnerPath) })
	if _, err := runnerFile.WriteString(runnerSrc); err != nil {
		runnerFile.Close()
		return "", err
	}
	runnerFile.Close()

	args := []string{}
	if opts.DisableSiteInit {
		args = append(args, "-S")
	}
	args = append(args, runnerPath)

	out, err := runner.Run(args...)
	if err != nil {
		return "", fmt.Errorf("developinstall: build script exited nonzero: %w: %s", err, string(out))
	}

	linkFile, err := soleLinkFile(scratch)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.DestDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(opts.DestDir, filepath.Base(linkFile))
	if err := os.Rename(linkFile, dest); err != nil {
		return "", fmt.Errorf("developinstall: moving link file into destination: %w", err)
	}
	scope.Push(func() error {
		if !ok {
			return os.Remove(dest)
		}
		return nil
	})

	ok = true
	return dest, nil
}

// soleLinkFile finds the single "*.egg-link" file the develop
// subcommand must have produced in scratch. Zero or multiple such
// files is an ambiguous-source-tree UserError per spec.md §7.
func soleLinkFile(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}
	var links []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".egg-link" {
			links = append(links, filepath.Join(scratch, e.Name()))
		}
	}
	switch len(links) {
	case 0:
		return "", fmt.Errorf("developinstall: build script produced no link file")
	case 1:
		return links[0], nil
	default:
		return "", fmt.Errorf("developinstall: build script produced %d link files, expected exactly one", len(links))
	}
}
