// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package driverbuild compiles ADBC driver shared libraries. It wraps
// the Go and Rust toolchains, derives the driver version from git
// tags, and on CI runs the compile inside manylinux containers so the
// produced libraries stay portable across Linux distributions.
package driverbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/adbc-drivers/dev/internal/run"
)

// Vars resolves make-style build variables. A variable can come from
// the process environment, a KEY=value command line argument, or a
// built-in default, in that order of precedence.
type Vars struct {
	v *viper.Viper
}

// ParseArgs splits KEY=value command line arguments into variable
// bindings.
func ParseArgs(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected KEY=value, got %q", arg)
		}
		vars[key] = value
	}
	return vars, nil
}

// NewVars layers the process environment over the given bindings.
func NewVars(cli map[string]string) *Vars {
	v := viper.New()
	for key, value := range cli {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return &Vars{v: v}
}

// String returns the variable's value, or fallback when it is unset
// or empty.
func (vs *Vars) String(name, fallback string) string {
	if value := vs.v.GetString(name); value != "" {
		return value
	}
	return fallback
}

// Bool interprets the variable as a flag. Unset and empty both mean
// false.
func (vs *Vars) Bool(name string) (bool, error) {
	value := vs.v.GetString(name)
	if value == "" {
		return false, nil
	}
	ok, err := parseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return ok, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("cannot convert %q to bool", value)
}

// splitList parses a comma separated variable, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Config captures one driver build resolved from the build variables.
type Config struct {
	// Driver is the short driver name, e.g. postgresql.
	Driver string
	// Lang is the implementation language, go or rust.
	Lang string
	// CI selects the containerized manylinux build on Linux.
	CI    bool
	Debug bool
	// Verbose echoes every subprocess invocation.
	Verbose bool
	// BuildTags are extra Go build tags.
	BuildTags []string
	// Features are extra Cargo features.
	Features []string
	// Volumes are extra container mounts for the Rust CI build.
	Volumes []string
	// RepoRoot is where the build/ output directory lives.
	RepoRoot string
	// DriverRoot is the driver's source directory.
	DriverRoot string
}

// Resolve reads the build variables and locates the driver source
// tree under root. The driver root is the DRIVER subdirectory when it
// exists, or root itself when root holds a go.mod or Cargo.toml.
func Resolve(vars *Vars, root string) (*Config, error) {
	driver := vars.String("DRIVER", "")
	if driver == "" {
		return nil, errors.New("must specify DRIVER=<driver>")
	}

	ci, err := vars.Bool("CI")
	if err != nil {
		return nil, err
	}
	debug, err := vars.Bool("DEBUG")
	if err != nil {
		return nil, err
	}
	verbose, err := vars.Bool("VERBOSE")
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	driverRoot := driver
	if !filepath.IsAbs(driverRoot) {
		driverRoot = filepath.Join(absRoot, driver)
	}
	if info, err := os.Stat(driverRoot); err != nil || !info.IsDir() {
		if hasManifest(absRoot) {
			driverRoot = absRoot
		}
	}

	return &Config{
		Driver:     driver,
		Lang:       strings.ToLower(strings.TrimSpace(vars.String("IMPL_LANG", "go"))),
		CI:         ci,
		Debug:      debug,
		Verbose:    verbose,
		BuildTags:  splitList(vars.String("BUILD_TAGS", "")),
		Features:   splitList(vars.String("FEATURES", "")),
		Volumes:    splitList(vars.String("ADDITIONAL_VOLUMES", "")),
		RepoRoot:   absRoot,
		DriverRoot: driverRoot,
	}, nil
}

func hasManifest(dir string) bool {
	for _, name := range []string{"Cargo.toml", "go.mod"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// LibExt returns the shared library extension for the host platform.
func LibExt() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "dylib", nil
	case "linux":
		return "so", nil
	case "windows":
		return "dll", nil
	}
	return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}

// Target returns the shared library file name for a driver, e.g.
// libadbc_driver_postgresql.so on Linux.
func Target(driver string) (string, error) {
	ext, err := LibExt()
	if err != nil {
		return "", err
	}
	return "libadbc_driver_" + driver + "." + ext, nil
}

// Build compiles the driver's shared library into <root>/build,
// skipping the compile when the library is already newer than every
// source file.
func Build(ctx context.Context, cfg *Config) error {
	target, err := Target(cfg.Driver)
	if err != nil {
		return err
	}
	var build func(context.Context, *Config, string) error
	switch cfg.Lang {
	case "go":
		build = buildGo
	case "rust":
		build = buildRust
	default:
		return fmt.Errorf("unsupported IMPL_LANG=%s", cfg.Lang)
	}
	if UpToDate(cfg, target) {
		run.Info(target, "is up to date")
		return nil
	}
	return build(ctx, cfg, target)
}
