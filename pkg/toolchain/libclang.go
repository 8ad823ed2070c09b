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
)

// DefaultLibclangBaseURL hosts the prebuilt libclang archives the
// Rust driver builds link against.
const DefaultLibclangBaseURL = "https://github.com/adbc-drivers/libclang-builds/releases/download"

// LibclangInstaller unpacks a prebuilt libclang for bindgen-based
// builds.
type LibclangInstaller struct {
	// Dir is where the archive is unpacked. Defaults to /opt/libclang.
	Dir string
	// BaseURL is the archive host. Defaults to DefaultLibclangBaseURL.
	BaseURL string
	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client
}

// Install fetches libclang-<version>-linux-<arch>.tar.gz for the
// platform and unpacks it, replacing any previous install at Dir. The
// archives are flat: lib/ and include/ sit at the archive root. It
// returns the resolved architecture token for the ARCH export.
func (l *LibclangInstaller) Install(ctx context.Context, version, target string, out io.Writer) (string, error) {
	// libclang archives use the GNU machine names, like Rust.
	arch, err := platform.RustArch(target)
	if err != nil {
		return "", err
	}
	dir := l.Dir
	if dir == "" {
		dir = "/opt/libclang"
	}
	baseURL := l.BaseURL
	if baseURL == "" {
		baseURL = DefaultLibclangBaseURL
	}

	name := fmt.Sprintf("libclang-%s-linux-%s.tar.gz", version, arch)
	url := fmt.Sprintf("%s/v%s/%s", baseURL, version, name)

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}
	scratch, err := os.MkdirTemp(parent, "libclang-install-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	fmt.Fprintln(out, "Downloading", url)
	body, err := fetch(ctx, l.Client, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	if err := extractTarGz(body, scratch); err != nil {
		return "", err
	}

	if err := replaceDir(scratch, dir); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Installed libclang %s to %s\n", version, dir)
	return arch, nil
}
