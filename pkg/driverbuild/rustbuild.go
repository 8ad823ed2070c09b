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

package driverbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adbc-drivers/dev/internal/run"
)

func buildRust(ctx context.Context, cfg *Config, target string) error {
	version, err := DetectVersion(cfg.DriverRoot, false)
	if err != nil {
		return err
	}
	buildDir := filepath.Join(cfg.RepoRoot, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}

	// The version embedded in the library comes from Cargo.toml.
	var cargoArgs []string
	if !cfg.Debug {
		cargoArgs = append(cargoArgs, "--release")
	}
	if len(cfg.Features) > 0 {
		cargoArgs = append(cargoArgs, "--features", strings.Join(cfg.Features, ","))
	}

	run.Info("Building", target, "version", version, "features", cfg.Features)

	env := map[string]string{}
	if runtime.GOOS == "darwin" {
		env["MACOSX_DEPLOYMENT_TARGET"] = macOSTarget
	}

	if cfg.CI && runtime.GOOS == "linux" {
		rel, err := filepath.Rel(resolvePath(cfg.RepoRoot), resolvePath(cfg.DriverRoot))
		if err != nil {
			return err
		}
		script := fmt.Sprintf("cd /source/%s && env %scargo build %s",
			filepath.ToSlash(rel), smuggledEnv("PROTOC"), strings.Join(cargoArgs, " "))
		if err := runCompose(ctx, cfg, "manylinux-rust", cfg.Volumes, script); err != nil {
			return err
		}
	} else {
		args := append([]string{"build"}, cargoArgs...)
		if err := run.Command(ctx, "cargo", args, run.Options{Dir: cfg.DriverRoot, Env: env}); err != nil {
			return err
		}
	}

	profile := "release"
	if cfg.Debug {
		profile = "debug"
	}
	artifact := target
	if runtime.GOOS == "windows" {
		// Cargo names Windows cdylibs without the lib prefix.
		artifact = strings.TrimPrefix(target, "lib")
	}
	output := filepath.Join(buildDir, target)
	if err := os.Rename(filepath.Join(cfg.DriverRoot, "target", profile, artifact), output); err != nil {
		return err
	}
	return os.Chmod(output, 0o755)
}
