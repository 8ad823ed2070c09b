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

// versionProperty is the linker-set variable that carries the driver
// version into the built library.
const versionProperty = "github.com/adbc-drivers/driverbase-go/driverbase.infoDriverVersion"

// macOSTarget is the minimum macOS version the drivers support.
const macOSTarget = "11.0"

func buildGo(ctx context.Context, cfg *Config, target string) error {
	version, err := DetectVersion(cfg.DriverRoot, false)
	if err != nil {
		return err
	}
	buildDir := filepath.Join(cfg.RepoRoot, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}

	ldflags := fmt.Sprintf("-s -w -X %s=%s", versionProperty, version)

	tags := []string{"driverlib"}
	if cfg.Debug {
		tags = append(tags, "assert")
	}
	tags = append(tags, cfg.BuildTags...)
	tagsArg := "-tags=" + strings.Join(tags, ",")

	run.Info("Building", target, "version", version)

	env := map[string]string{}
	if runtime.GOOS == "darwin" {
		env["CGO_CFLAGS"] = "-mmacosx-version-min=" + macOSTarget
		env["CGO_LDFLAGS"] = "-mmacosx-version-min=" + macOSTarget
	}

	output := filepath.Join(buildDir, target)
	if cfg.CI && runtime.GOOS == "linux" {
		// Vendor so the module cache need not be mounted into the
		// container.
		if err := run.Command(ctx, "go", []string{"mod", "vendor"}, run.Options{Dir: cfg.DriverRoot}); err != nil {
			return err
		}
		rel, err := filepath.Rel(resolvePath(cfg.RepoRoot), resolvePath(cfg.DriverRoot))
		if err != nil {
			return err
		}
		// The version script hides every symbol except the ADBC entry
		// points.
		ldflags += " -linkmode external -extldflags=-Wl,--version-script=/only-export-adbc.ld"
		script := fmt.Sprintf(
			"cd /source/%s && env %sgo build -buildmode=c-shared %s -o /source/build/%s -ldflags %q ./pkg",
			filepath.ToSlash(rel), smuggledEnv("CGO_CFLAGS", "CGO_LDFLAGS"), tagsArg, target, ldflags)
		if err := runCompose(ctx, cfg, "manylinux", nil, script); err != nil {
			return err
		}
	} else {
		args := []string{
			"build", "-buildmode=c-shared", tagsArg,
			"-o", output, "-ldflags", ldflags, "./pkg",
		}
		if err := run.Command(ctx, "go", args, run.Options{Dir: cfg.DriverRoot, Env: env}); err != nil {
			return err
		}
	}

	if err := os.Chmod(output, 0o755); err != nil {
		return err
	}
	// Nothing consumes the generated C header.
	header := strings.TrimSuffix(output, filepath.Ext(output)) + ".h"
	if err := os.Remove(header); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// smuggledEnv renders selected host environment variables as env(1)
// arguments so they survive the hop into the container.
func smuggledEnv(names ...string) string {
	var sb strings.Builder
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok {
			fmt.Fprintf(&sb, "%s=%q ", name, value)
		}
	}
	return sb.String()
}
