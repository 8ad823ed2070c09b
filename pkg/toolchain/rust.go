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

package toolchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adbc-drivers/dev/internal/platform"
	"github.com/adbc-drivers/dev/internal/run"
)

// DefaultRustupBaseURL hosts the rustup-init binaries per target
// triple.
const DefaultRustupBaseURL = "https://static.rust-lang.org/rustup/dist"

// RustInstaller installs a pinned Rust toolchain with rustup.
type RustInstaller struct {
	// BaseURL is the rustup-init host. Defaults to
	// DefaultRustupBaseURL.
	BaseURL string
	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client
	// Run executes the downloaded rustup-init; defaults to running it
	// attached to our stdio. Swapped in tests.
	Run func(ctx context.Context, path string, args []string) error
}

// Install downloads rustup-init for the platform's target triple and
// runs it non-interactively with the given toolchain version pinned
// as the default. It returns the resolved architecture token for the
// ARCH export.
func (r *RustInstaller) Install(ctx context.Context, version, target string, out io.Writer) (string, error) {
	arch, err := platform.RustArch(target)
	if err != nil {
		return "", err
	}
	triple, err := platform.RustTriple(target)
	if err != nil {
		return "", err
	}
	baseURL := r.BaseURL
	if baseURL == "" {
		baseURL = DefaultRustupBaseURL
	}
	runInit := r.Run
	if runInit == nil {
		runInit = func(ctx context.Context, path string, args []string) error {
			return run.Command(ctx, path, args, run.Options{})
		}
	}

	scratch, err := os.MkdirTemp("", "rustup-init-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	url := baseURL + "/" + triple + "/rustup-init"
	init := filepath.Join(scratch, "rustup-init")
	fmt.Fprintln(out, "Downloading", url)
	if err := download(ctx, r.Client, url, init, ""); err != nil {
		return "", err
	}
	if err := os.Chmod(init, 0o755); err != nil {
		return "", err
	}

	args := []string{
		"-y", "--profile", "minimal",
		"--default-toolchain", version,
		"--default-host", triple,
	}
	if err := runInit(ctx, init, args); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Installed Rust %s for %s\n", version, triple)
	return arch, nil
}
