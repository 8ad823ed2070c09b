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

// Package toolchain installs the cross-compilation toolchains the
// driver container images need: the Go toolchain under /usr/local,
// Rust via rustup, and a prebuilt libclang under /opt/libclang.
//
// Each installer takes a toolchain version and a Docker-style target
// platform (linux/amd64 or linux/arm64). An unsupported platform
// fails before any network access; every other failure aborts the
// install and surfaces to the invoking build step. Re-running an
// installer replaces a previous install of the toolchain instead of
// accumulating partial state.
package toolchain

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// fetch issues a GET and hands back the body. The caller closes it.
func fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// fetchString downloads a small text resource, trimmed.
func fetchString(ctx context.Context, client *http.Client, url string) (string, error) {
	body, err := fetch(ctx, client, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// download writes url to dest. A non-empty sha256Hex is checked
// against the received bytes; a mismatch removes dest and fails.
func download(ctx context.Context, client *http.Client, url, dest, sha256Hex string) (err error) {
	body, err := fetch(ctx, client, url)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	hash := sha256.New()
	if _, err := io.Copy(f, io.TeeReader(body, hash)); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	if sha256Hex != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if got != sha256Hex {
			return fmt.Errorf("%s: checksum mismatch: got %s, want %s", path.Base(url), got, sha256Hex)
		}
	}
	return nil
}

// extractTarGz unpacks a gzipped tarball into dest, refusing entries
// that would escape it.
func extractTarGz(archive io.Reader, dest string) error {
	gz, err := gzip.NewReader(archive)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		name := path.Clean(hdr.Name)
		if name == "." || name == "" {
			continue
		}
		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs(hdr.Mode, 0o755)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeEntry(target, tr, fs(hdr.Mode, 0o644)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported archive entry %q", hdr.Name)
		}
	}
}

func writeEntry(target string, r io.Reader, mode os.FileMode) (err error) {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, r)
	return err
}

func fs(mode int64, fallback os.FileMode) os.FileMode {
	if mode == 0 {
		return fallback
	}
	return os.FileMode(mode) & 0o777
}

// securePath joins name onto root, rejecting traversal outside it.
func securePath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != filepath.Clean(root) && !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the install directory", name)
	}
	return target, nil
}

// replaceDir atomically swaps dir for newDir. The previous contents
// are removed, so repeated installs converge instead of accumulating.
func replaceDir(newDir, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(newDir, dir)
}
