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
	"strings"

	"github.com/adbc-drivers/dev/internal/platform"
)

// DefaultGoBaseURL hosts the official Go release tarballs and their
// published checksums.
const DefaultGoBaseURL = "https://go.dev/dl"

// GoInstaller installs the Go toolchain from a release tarball.
type GoInstaller struct {
	// Prefix is the parent directory the toolchain is extracted into;
	// the tarball's go/ directory lands at <Prefix>/go, the layout
	// Go's own install instructions use. Defaults to /usr/local.
	Prefix string
	// BaseURL is the release host. Defaults to DefaultGoBaseURL.
	BaseURL string
	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client
}

// Install downloads go<version>.linux-<arch>.tar.gz, verifies it
// against the published SHA-256, and extracts it under the prefix,
// replacing any previous install there. It returns the resolved
// architecture token for the ARCH export.
func (g *GoInstaller) Install(ctx context.Context, version, target string, out io.Writer) (string, error) {
	arch, err := platform.GoArch(target)
	if err != nil {
		return "", err
	}
	prefix := g.Prefix
	if prefix == "" {
		prefix = "/usr/local"
	}
	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = DefaultGoBaseURL
	}

	name := fmt.Sprintf("go%s.linux-%s.tar.gz", version, arch)
	url := baseURL + "/" + name

	// The .sha256 sibling carries the digest, in some eras followed by
	// the file name.
	sum, err := fetchString(ctx, g.Client, url+".sha256")
	if err != nil {
		return "", err
	}
	sum, _, _ = strings.Cut(sum, " ")
	if len(sum) != 64 {
		return "", fmt.Errorf("%s.sha256: malformed digest %q", name, sum)
	}

	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return "", err
	}
	scratch, err := os.MkdirTemp(prefix, "go-install-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	archive := filepath.Join(scratch, name)
	fmt.Fprintln(out, "Downloading", url)
	if err := download(ctx, g.Client, url, archive, sum); err != nil {
		return "", err
	}

	f, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	if err := extractTarGz(f, scratch); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	extracted := filepath.Join(scratch, "go")
	if info, err := os.Stat(extracted); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s does not contain a go/ directory", name)
	}
	goroot := filepath.Join(prefix, "go")
	if err := replaceDir(extracted, goroot); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Installed Go %s to %s\n", version, goroot)
	return arch, nil
}
