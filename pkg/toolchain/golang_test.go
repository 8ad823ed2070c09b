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
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adbc-drivers/dev/internal/platform"
)

func goTestTarball(t *testing.T) []byte {
	t.Helper()
	return makeTarGz(t, []tarEntry{
		dirEntry("go"),
		dirEntry("go/bin"),
		{name: "go/bin/go", body: "#!/bin/sh\necho go1.25.3\n", mode: 0o755},
		{name: "go/VERSION", body: "go1.25.3", mode: 0o644},
	})
}

// goReleaseServer serves a fake Go release with its published checksum.
func goReleaseServer(t *testing.T, tarball []byte, sha string, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/go1.25.3.linux-amd64.tar.gz":
			w.Write(tarball)
		case "/go1.25.3.linux-amd64.tar.gz.sha256":
			fmt.Fprintf(w, "%s  go1.25.3.linux-amd64.tar.gz\n", sha)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestGoInstall tests the full install flow against a fake release host
func TestGoInstall(t *testing.T) {
	tarball := goTestTarball(t)
	sum := sha256.Sum256(tarball)
	var requests atomic.Int32
	srv := goReleaseServer(t, tarball, fmt.Sprintf("%x", sum), &requests)

	prefix := t.TempDir()
	// a previous install that must be replaced, stale files included
	stale := filepath.Join(prefix, "go", "bin")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "gofmt"), []byte("old"), 0o755))

	inst := &GoInstaller{Prefix: prefix, BaseURL: srv.URL}
	var out bytes.Buffer
	arch, err := inst.Install(context.Background(), "1.25.3", "linux/amd64", &out)
	require.NoError(t, err)
	assert.Equal(t, "amd64", arch)
	assert.Equal(t, int32(2), requests.Load())

	data, err := os.ReadFile(filepath.Join(prefix, "go", "VERSION"))
	require.NoError(t, err)
	assert.Equal(t, "go1.25.3", string(data))

	info, err := os.Stat(filepath.Join(prefix, "go", "bin", "go"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	assert.NoFileExists(t, filepath.Join(prefix, "go", "bin", "gofmt"))
	assert.Contains(t, out.String(), "Downloading "+srv.URL+"/go1.25.3.linux-amd64.tar.gz")
	assert.Contains(t, out.String(), "Installed Go 1.25.3")

	// scratch directories do not pile up next to the install
	entries, err := os.ReadDir(prefix)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "go", entries[0].Name())
}

// TestGoInstallUnsupportedPlatform tests that a bad platform fails before any download
func TestGoInstallUnsupportedPlatform(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	prefix := t.TempDir()
	inst := &GoInstaller{Prefix: prefix, BaseURL: srv.URL}
	_, err := inst.Install(context.Background(), "1.25.3", "windows/amd64", io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
	assert.Zero(t, requests.Load())
	assert.NoDirExists(t, filepath.Join(prefix, "go"))
}

// TestGoInstallChecksumMismatch tests that a bad digest aborts the install
func TestGoInstallChecksumMismatch(t *testing.T) {
	tarball := goTestTarball(t)
	var requests atomic.Int32
	srv := goReleaseServer(t, tarball, strings.Repeat("0", 64), &requests)

	prefix := t.TempDir()
	inst := &GoInstaller{Prefix: prefix, BaseURL: srv.URL}
	_, err := inst.Install(context.Background(), "1.25.3", "linux/amd64", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.NoDirExists(t, filepath.Join(prefix, "go"))
}

// TestGoInstallMalformedDigest tests rejection of a garbled .sha256 file
func TestGoInstallMalformedDigest(t *testing.T) {
	tarball := goTestTarball(t)
	var requests atomic.Int32
	srv := goReleaseServer(t, tarball, "not-a-digest", &requests)

	inst := &GoInstaller{Prefix: t.TempDir(), BaseURL: srv.URL}
	_, err := inst.Install(context.Background(), "1.25.3", "linux/amd64", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed digest")
	// nothing beyond the .sha256 fetch
	assert.Equal(t, int32(1), requests.Load())
}

// TestGoInstallBadLayout tests rejection of a tarball without a go/ root
func TestGoInstallBadLayout(t *testing.T) {
	tarball := makeTarGz(t, []tarEntry{
		{name: "README", body: "wrong archive", mode: 0o644},
	})
	sum := sha256.Sum256(tarball)
	var requests atomic.Int32
	srv := goReleaseServer(t, tarball, fmt.Sprintf("%x", sum), &requests)

	prefix := t.TempDir()
	inst := &GoInstaller{Prefix: prefix, BaseURL: srv.URL}
	_, err := inst.Install(context.Background(), "1.25.3", "linux/amd64", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a go/ directory")
	assert.NoDirExists(t, filepath.Join(prefix, "go"))
}
