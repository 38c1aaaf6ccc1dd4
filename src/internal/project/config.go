// Package project implements the manifest file a target environment's
// top-level requirements and pin map are declared in: eggctl.toml.
//
// Adapted field-for-field from the teacher's project.Config
// (_examples/aaravmaloo-xe/src/internal/project/config.go), which
// already shaped "name + python version + deps map + cache config" —
// this version generalizes Deps from "name -> exact version string"
// to "name -> PEP440-flavored version specifier", and renames the
// ad hoc NormalizeDepName helper to delegate to
// eggctl/src/internal/requirement.NormalizeProjectKey so project-key
// folding has exactly one implementation across the module.
package project

import (
	"os"
	"path/filepath"
	"runtime"

	"eggctl/src/internal/requirement"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest filename LoadOrCreate looks for in a project directory.
const FileName = "eggctl.toml"

// Config is the on-disk project manifest.
type Config struct {
	Project ProjectConfig     `toml:"project"`
	Python  PythonConfig      `toml:"python"`
	Deps    map[string]string `toml:"deps"`
	Cache   CacheConfig       `toml:"cache"`
	Index   IndexConfig       `toml:"index"`
}

// ProjectConfig names the project the manifest describes.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// PythonConfig pins the interpreter version this project targets.
type PythonConfig struct {
	Version    string `toml:"version"`
	Executable string `toml:"executable"`
}

// CacheConfig selects the download-cache mode spec.md §6's
// download_cache/install_from_cache knobs describe.
type CacheConfig struct {
	Mode      string `toml:"mode"` // "global-cas" or "install-from-cache"
	GlobalDir string `toml:"global_dir"`
}

// IndexConfig names the package index and any additional find-links
// sources, per spec.md §4.2.
type IndexConfig struct {
	URL        string   `toml:"url"`
	FindLinks  []string `toml:"find_links"`
	AllowHosts []string `toml:"allow_hosts"`
}

// NewDefault returns the manifest written for a freshly initialized project.
func NewDefault(projectDir string) Config {
	return Config{
		Project: ProjectConfig{Name: filepath.Base(projectDir)},
		Python:  PythonConfig{Version: "3.12"},
		Deps:    map[string]string{},
		Cache: CacheConfig{
			Mode:      "global-cas",
			GlobalDir: defaultGlobalCacheDir(),
		},
	}
}

// LoadOrCreate loads projectDir's manifest, creating a default one if absent.
func LoadOrCreate(projectDir string) (Config, string, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := NewDefault(projectDir)
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Load reads and defaults a manifest from path.
func Load(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	if cfg.Deps == nil {
		cfg.Deps = map[string]string{}
	}
	if cfg.Cache.Mode == "" {
		cfg.Cache.Mode = "global-cas"
	}
	if cfg.Cache.GlobalDir == "" {
		cfg.Cache.GlobalDir = defaultGlobalCacheDir()
	}
	if cfg.Python.Version == "" {
		cfg.Python.Version = "3.12"
	}
	return cfg, nil
}

// Save writes cfg to path, defaulting any unset fields first.
func Save(path string, cfg Config) error {
	if cfg.Deps == nil {
		cfg.Deps = map[string]string{}
	}
	if cfg.Cache.Mode == "" {
		cfg.Cache.Mode = "global-cas"
	}
	if cfg.Cache.GlobalDir == "" {
		cfg.Cache.GlobalDir = defaultGlobalCacheDir()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func defaultGlobalCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eggctl-cache"
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Local", "eggctl", "cache")
	}
	return filepath.Join(home, ".cache", "eggctl")
}

// NormalizeDepName folds a manifest dependency name to its canonical
// project key, delegating to requirement.NormalizeProjectKey.
func NormalizeDepName(name string) string {
	return requirement.NormalizeProjectKey(name)
}
