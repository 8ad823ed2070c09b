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
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name     string
	body     string
	mode     int64
	link     string
	typeflag byte
}

func dirEntry(name string) tarEntry {
	return tarEntry{name: name, mode: 0o755, typeflag: tar.TypeDir}
}

// makeTarGz builds a gzipped tarball in memory for the install tests.
func makeTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Typeflag: e.typeflag,
			Linkname: e.link,
		}
		if hdr.Typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// TestExtractTarGz tests archive extraction and its traversal guard
func TestExtractTarGz(t *testing.T) {
	t.Run("files dirs and symlinks", func(t *testing.T) {
		tarball := makeTarGz(t, []tarEntry{
			dirEntry("lib"),
			{name: "lib/libfoo.so.1", body: "ELF", mode: 0o755},
			{name: "lib/libfoo.so", link: "libfoo.so.1", typeflag: tar.TypeSymlink},
			{name: "lib/deep/nested.txt", body: "hi", mode: 0o644},
		})

		dest := t.TempDir()
		require.NoError(t, extractTarGz(bytes.NewReader(tarball), dest))

		info, err := os.Stat(filepath.Join(dest, "lib", "libfoo.so.1"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

		link, err := os.Readlink(filepath.Join(dest, "lib", "libfoo.so"))
		require.NoError(t, err)
		assert.Equal(t, "libfoo.so.1", link)

		// parent directories are created even without a dir entry
		data, err := os.ReadFile(filepath.Join(dest, "lib", "deep", "nested.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hi", string(data))
	})

	t.Run("rejects traversal", func(t *testing.T) {
		tarball := makeTarGz(t, []tarEntry{
			{name: "../evil.txt", body: "nope", mode: 0o644},
		})

		err := extractTarGz(bytes.NewReader(tarball), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes the install directory")
	})

	t.Run("rejects device entries", func(t *testing.T) {
		tarball := makeTarGz(t, []tarEntry{
			{name: "dev/null", mode: 0o644, typeflag: tar.TypeChar},
		})

		err := extractTarGz(bytes.NewReader(tarball), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported archive entry")
	})

	t.Run("rejects garbage", func(t *testing.T) {
		err := extractTarGz(strings.NewReader("not a tarball"), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading archive")
	})
}

// TestDownload tests checksum verification on downloads
func TestDownload(t *testing.T) {
	body := []byte("toolchain bits")
	sum := sha256.Sum256(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	t.Run("verified", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "blob")
		require.NoError(t, download(context.Background(), nil, srv.URL, dest, hex.EncodeToString(sum[:])))

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("mismatch removes the file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "blob")
		err := download(context.Background(), nil, srv.URL, dest, strings.Repeat("0", 64))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum mismatch")
		assert.NoFileExists(t, dest)
	})

	t.Run("no checksum", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "blob")
		require.NoError(t, download(context.Background(), nil, srv.URL, dest, ""))
		assert.FileExists(t, dest)
	})
}

// TestFetchStatus tests that non-200 responses surface as errors
func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	_, err := fetchString(context.Background(), nil, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

// TestExportArch tests the ARCH export side effect
func TestExportArch(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "profile.d", "adbc-arch.sh")
	var out bytes.Buffer
	require.NoError(t, ExportArch(envFile, "x86_64", &out))

	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "export ARCH=x86_64\n", string(data))
	assert.Equal(t, "export ARCH=x86_64\n", out.String())

	// a rerun overwrites rather than appends
	require.NoError(t, ExportArch(envFile, "aarch64", io.Discard))
	data, err = os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "export ARCH=aarch64\n", string(data))
}
