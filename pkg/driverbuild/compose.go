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
	"embed"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adbc-drivers/dev/internal/platform"
	"github.com/adbc-drivers/dev/internal/run"
)

//go:embed compose
var composeFS embed.FS

// ComposeDir materializes the bundled manylinux build environment
// into the user cache and returns its path, so docker compose can run
// against it from any checkout.
func ComposeDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cache, "adbc-drivers-dev", "compose")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	entries, err := composeFS.ReadDir("compose")
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		data, err := composeFS.ReadFile("compose/" + entry.Name())
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, entry.Name()), data, 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// runCompose runs a shell script in a one-off container of the given
// compose service, with the repository mounted at /source.
func runCompose(ctx context.Context, cfg *Config, service string, volumes []string, script string) error {
	dir, err := ComposeDir()
	if err != nil {
		return err
	}
	arch, err := platform.Host()
	if err != nil {
		return err
	}
	args := []string{"compose", "run", "--rm", "--user", strconv.Itoa(os.Getuid())}
	for _, volume := range volumes {
		args = append(args, "-v", volume)
	}
	args = append(args, service, "--", "bash", "-c", script)
	return run.Command(ctx, "docker", args, run.Options{
		Dir: dir,
		Env: map[string]string{
			"SOURCE_ROOT": cfg.RepoRoot,
			"ARCH":        arch,
		},
	})
}
