// Package python runs a local interpreter as a subprocess with a
// normalized environment, the piece of the teacher's
// python.PythonManager (_examples/aaravmaloo-xe/src/internal/python/manager.go)
// this core still needs: RunPython's PATH/PYTHONIOENCODING/PYTHONUTF8
// environment construction and GetPythonExe's platform-specific
// executable discovery. The teacher's embeddable-CPython
// download-and-bootstrap feature (Install/BootstrapPip/patchPthFile)
// is dropped — this core always targets an interpreter the caller
// already has (a system Python or an existing virtualenv), it does
// not provision one, so GLOSSARY has no "managed toolchain" concept.
package python

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Runner invokes a fixed interpreter executable as a subprocess.
type Runner struct {
	Executable string
}

// NewRunner wraps exe, resolving it to an absolute path when possible
// so the constructed PATH entries below are meaningful.
func NewRunner(exe string) *Runner {
	if abs, err := filepath.Abs(exe); err == nil {
		exe = abs
	}
	return &Runner{Executable: exe}
}

// Run executes the interpreter with args, returning combined output.
// The PATH is extended with the interpreter's own directory (and its
// Scripts subdirectory on Windows) so entry-point shims the build
// tool installs alongside it resolve, matching the environment
// python.PythonManager.RunPython constructs.
func (r *Runner) Run(args ...string) ([]byte, error) {
	cmd := exec.Command(r.Executable, args...)
	cmd.Env = r.environ()
	return cmd.CombinedOutput()
}

// RunWithDir is Run with the subprocess's working directory set to
// dir.
func (r *Runner) RunWithDir(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command(r.Executable, args...)
	cmd.Dir = dir
	cmd.Env = r.environ()
	return cmd.CombinedOutput()
}

func (r *Runner) environ() []string {
	env := os.Environ()
	exeDir := filepath.Dir(r.Executable)

	pathValue := os.Getenv("PATH")
	var newPath string
	if runtime.GOOS == "windows" {
		newPath = exeDir + string(os.PathListSeparator) + filepath.Join(exeDir, "Scripts") + string(os.PathListSeparator) + pathValue
	} else {
		newPath = exeDir + string(os.PathListSeparator) + pathValue
	}

	pathFound := false
	for i, e := range env {
		if len(e) > 5 && e[:5] == "PATH=" {
			env[i] = "PATH=" + newPath
			pathFound = true
			break
		}
	}
	if !pathFound {
		env = append(env, "PATH="+newPath)
	}
	env = append(env, "PYTHONIOENCODING=utf-8", "PYTHONUTF8=1")
	return env
}

// FindOnPath locates a named interpreter (e.g. "python3", "python")
// on PATH, the fallback used when no explicit executable is
// configured, mirroring GetPythonExe's "try python3 then python" order.
func FindOnPath(names ...string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("python: none of %v found on PATH", names)
}
