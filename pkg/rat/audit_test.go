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

package rat

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adbc-drivers/dev/internal/gittest"
)

// TestFnmatchRegexp tests the glob translation, * crossing separators included
func TestFnmatchRegexp(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		match   bool
	}{
		{"*.json", "data.json", true},
		{"*.json", "a/b/c.json", true},
		{"*.json", "data.jsonl", false},
		{"go.sum", "go.sum", true},
		{"go.sum", "sub/go.sum", false},
		{"?at.go", "cat.go", true},
		{"?at.go", "at.go", false},
		{"[bc]at.go", "bat.go", true},
		{"[!bc]at.go", "bat.go", false},
		{"[!bc]at.go", "hat.go", true},
		{"docs/*", "docs/index.md", true},
		{"docs/*", "docs/api/index.md", true},
		{"[oops", "[oops", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.name, func(t *testing.T) {
			re, err := fnmatchRegexp(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.match, re.MatchString(tt.name))
		})
	}
}

// TestCountUnapproved tests RAT report parsing and exclusion handling
func TestCountUnapproved(t *testing.T) {
	report := []byte(`<?xml version='1.0'?>
<rat-report timestamp="2025-06-01T12:00:00">
  <resource name="ok.go">
    <license-approval name="true"/>
  </resource>
  <resource name="missing.go">
    <license-approval name="false"/>
  </resource>
  <resource name="generated/schema.json">
    <license-approval name="false"/>
  </resource>
  <resource name="no-approval.bin"/>
</rat-report>`)

	excludes := mustPatterns(t, "*.json")

	var out bytes.Buffer
	count, err := countUnapproved(report, excludes, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, out.String(), "Files without licenses or with unapproved licenses found:")
	assert.Contains(t, out.String(), "- missing.go")
	assert.NotContains(t, out.String(), "schema.json")
	assert.NotContains(t, out.String(), "ok.go")

	_, err = countUnapproved([]byte("not xml"), nil, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing RAT report")
}

func mustPatterns(t *testing.T, lines ...string) patternList {
	t.Helper()
	patterns := make(patternList, 0, len(lines))
	for _, line := range lines {
		re, err := fnmatchRegexp(line)
		require.NoError(t, err)
		patterns = append(patterns, re)
	}
	return patterns
}

const provenance = "This file has been modified from its original version, which is under the Apache License: Licensed to the Apache Software Foundation (ASF) under one or more contributor license agreements."

// TestAuditorCheck tests the full audit over a tracked tree with a stubbed RAT
func TestAuditorCheck(t *testing.T) {
	repo := gittest.New(t)
	repo.Write("ok.go", "// Copyright (c) 2025 ADBC Drivers Contributors\n//\n// Licensed under the Apache License, Version 2.0\npackage ok\n")
	repo.Write("missing.go", "package missing\n")
	repo.Write("vendored/imported.go", "// Copyright (c) 2025 ADBC Drivers Contributors\n//\n// "+provenance+"\npackage imported\n")
	repo.Write("stray.go", "// Copyright (c) 2025 ADBC Drivers Contributors\n//\n// "+provenance+"\npackage stray\n")
	repo.Write("LICENSE.txt", "Apache License\nVersion 2.0, January 2004\n")
	repo.Write(".rat-excludes", ".rat-*\n")
	repo.Write(".rat-apache", "vendored/imported.go\n")
	repo.Commit("init",
		"ok.go", "missing.go", "vendored/imported.go", "stray.go",
		"LICENSE.txt", ".rat-excludes", ".rat-apache")

	cacheDir := t.TempDir()
	jar := filepath.Join(cacheDir, "apache-rat-"+Version+".jar")
	require.NoError(t, os.WriteFile(jar, []byte("fake jar"), 0o644))

	var gotJar string
	var archived []string
	auditor := &Auditor{
		CacheDir: cacheDir,
		RunRAT: func(ctx context.Context, jar, archive string) ([]byte, error) {
			gotJar = jar
			archived = tarNames(t, archive)
			return []byte(`<?xml version='1.0'?>
<rat-report>
  <resource name="ok.go"><license-approval name="true"/></resource>
  <resource name="missing.go"><license-approval name="false"/></resource>
</rat-report>`), nil
		},
	}

	var out bytes.Buffer
	violations, err := auditor.Check(context.Background(), repo.Dir, &out)
	require.NoError(t, err)

	// missing.go counts twice: unapproved license and missing header
	assert.Equal(t, 3, violations)
	assert.Equal(t, jar, gotJar)
	assert.Equal(t,
		[]string{".rat-apache", ".rat-excludes", "LICENSE.txt", "missing.go", "ok.go", "stray.go", "vendored/imported.go"},
		archived)

	assert.Contains(t, out.String(), "Checking licenses for "+repo.Dir)
	assert.Contains(t, out.String(), "Using Apache RAT: "+jar)
	assert.NotContains(t, out.String(), "Downloading")
	assert.Contains(t, out.String(), "Files without licenses or with unapproved licenses found:\n- missing.go")
	assert.Contains(t, out.String(), "Files missing ADBC Drivers Contributors copyright header:\n- missing.go")
	assert.Contains(t, out.String(), "Files that should not have 'This file has been modified' header:\n- stray.go")
	assert.NotContains(t, out.String(), "Files missing 'This file has been modified' header:")
	assert.NotContains(t, out.String(), "- LICENSE.txt")
	assert.NotContains(t, out.String(), "- vendored/imported.go")
}

// TestAuditorCheckMissingProvenance tests flagging a .rat-apache file without the header
func TestAuditorCheckMissingProvenance(t *testing.T) {
	repo := gittest.New(t)
	repo.Write("vendored/imported.go", "// Copyright (c) 2025 ADBC Drivers Contributors\npackage imported\n")
	repo.Write(".rat-excludes", ".rat-*\n")
	repo.Write(".rat-apache", "vendored/imported.go\n")
	repo.Commit("init", "vendored/imported.go", ".rat-excludes", ".rat-apache")

	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(cacheDir, "apache-rat-"+Version+".jar"), []byte("fake jar"), 0o644))

	auditor := &Auditor{
		CacheDir: cacheDir,
		RunRAT: func(ctx context.Context, jar, archive string) ([]byte, error) {
			return []byte(`<rat-report/>`), nil
		},
	}

	var out bytes.Buffer
	violations, err := auditor.Check(context.Background(), repo.Dir, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, violations)
	assert.Contains(t, out.String(), "Files missing 'This file has been modified' header:\n- vendored/imported.go")
}

// TestEnsureJar tests the one-time jar download into the cache dir
func TestEnsureJar(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/"+Version+"/apache-rat-"+Version+".jar" {
			io.WriteString(w, "jar bytes")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	auditor := &Auditor{CacheDir: cacheDir, BaseURL: srv.URL}

	var out bytes.Buffer
	jar, err := auditor.ensureJar(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "apache-rat-"+Version+".jar"), jar)
	assert.Equal(t, int32(1), requests.Load())
	assert.Contains(t, out.String(), "Downloading")

	data, err := os.ReadFile(jar)
	require.NoError(t, err)
	assert.Equal(t, "jar bytes", string(data))

	// second run reuses the cached jar
	_, err = auditor.ensureJar(context.Background(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func tarNames(t *testing.T, archive string) []string {
	t.Helper()
	f, err := os.Open(archive)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	return names
}
