// Package config implements two layers spec.md §6 and §9 both call
// for: an explicit immutable ResolverOptions value (replacing the
// Python original's process-wide getter/setter singletons per §9's
// design note), and a thin Global wrapper around the teacher's viper
// setup (_examples/aaravmaloo-xe/src/cmd/root.go's initConfig) for the
// CLI-only concerns that do belong in a single global: which config
// file was loaded, whether profiling is enabled, and where its
// artifacts go.
package config

import (
	"eggctl/src/internal/appdir"
	"eggctl/src/internal/pinmap"

	"github.com/spf13/viper"
)

// ResolverOptions is the immutable value spec.md §6's "Configuration
// knobs (process-wide, each with a getter/setter)" table becomes: one
// struct, constructed once per Resolve call, with With* builder
// methods for transient overrides instead of mutable global state.
type ResolverOptions struct {
	Pins                        pinmap.Map
	DownloadCacheDir            string // stored only; no download cache is read or written from it
	InstallFromCache            bool   // Install returns a cached solution on a hit; the index and find-links are left unchanged
	PreferFinal                 bool
	IncludeSitePackages         bool
	AllowedEggsFromSitePackages []string // glob patterns
	UseDependencyLinks          bool
	AllowPickedVersions         bool
	AlwaysUnzip                 bool
	Newest                      bool
	AllowHosts                  []string // glob patterns matched against a URL's host; file:// is always permitted
}

// Default returns the conservative option set a fresh Resolver starts
// from: prefer final releases, search the newest index candidate,
// and tolerate picked (unpinned) versions.
func Default() ResolverOptions {
	return ResolverOptions{
		Pins:                pinmap.New(nil),
		PreferFinal:         true,
		IncludeSitePackages: false,
		UseDependencyLinks:  false,
		AllowPickedVersions: true,
		AlwaysUnzip:         false,
		Newest:              true,
	}
}

// WithPins returns a copy of o with its pin map replaced.
func (o ResolverOptions) WithPins(pins pinmap.Map) ResolverOptions {
	o.Pins = pins
	return o
}

// WithDownloadCache returns a copy of o with its download cache directory set.
func (o ResolverOptions) WithDownloadCache(dir string) ResolverOptions {
	o.DownloadCacheDir = dir
	return o
}

// WithInstallFromCache returns a copy of o with install-from-cache mode toggled.
func (o ResolverOptions) WithInstallFromCache(enabled bool) ResolverOptions {
	o.InstallFromCache = enabled
	return o
}

// WithSitePackages returns a copy of o configured to include
// interpreter site paths, with the given allow-list glob patterns.
func (o ResolverOptions) WithSitePackages(include bool, allowed []string) ResolverOptions {
	o.IncludeSitePackages = include
	o.AllowedEggsFromSitePackages = allowed
	return o
}

// WithAllowHosts returns a copy of o restricted to downloading from
// hosts matching one of the given glob patterns; file:// sources are
// never affected by this list, per spec.md §4.2.
func (o ResolverOptions) WithAllowHosts(hosts []string) ResolverOptions {
	o.AllowHosts = hosts
	return o
}

// Global is the CLI-wide configuration surface: which file backed
// viper's load, and whether/where profiling artifacts are written.
// Kept as a thin singleton, unlike ResolverOptions, because it mirrors
// genuinely global process concerns (one config file, one profiling
// session) the teacher's cmd package already modeled this way.
type Global struct {
	ProfileEnabled bool
	ProfileDir     string
}

// LoadGlobal reads the CLI config file (explicit path if given,
// otherwise appdir.ConfigFile()) into viper and returns the resolved
// Global settings.
func LoadGlobal(explicitPath string) (Global, error) {
	if explicitPath != "" {
		viper.SetConfigFile(explicitPath)
	} else {
		viper.SetConfigFile(appdir.ConfigFile())
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // a missing config file is not an error; defaults apply

	g := Global{
		ProfileEnabled: viper.GetBool("profile"),
		ProfileDir:     viper.GetString("profile_dir"),
	}
	if g.ProfileDir == "" {
		g.ProfileDir = appdir.ProfileDir()
	}
	return g, nil
}
