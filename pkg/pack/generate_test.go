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

package pack

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taggedDriverRepo builds a clean repository holding a driver module
// on tag v1.0.0.
func taggedDriverRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/foo\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("go.mod")
	require.NoError(t, err)
	sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0.0", hash, nil)
	require.NoError(t, err)
	return dir
}

// TestGenerateMissingLicense tests that packaging refuses to produce
// archives without a LICENSE
func TestGenerateMissingLicense(t *testing.T) {
	repo := taggedDriverRepo(t)

	templateDir := t.TempDir()
	template := filepath.Join(templateDir, "manifest.toml")
	require.NoError(t, os.WriteFile(template, []byte(
		"name = \"Foo Driver\"\n"+
			"description = \"Connects to Foo\"\n"+
			"publisher = \"Example Corp\"\n"+
			"license = \"Apache-2.0\"\n"+
			"version = \"0.0.0\"\n"), 0o644))

	inputs := filepath.Join(t.TempDir(), "drivers-linux-amd64")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "libadbc_driver_foo.so"), []byte("lib"), 0o644))

	var out bytes.Buffer
	err := Generate(t.Context(), Options{
		Output:           filepath.Join(t.TempDir(), "dist"),
		Name:             "foo",
		Root:             repo,
		ManifestTemplate: template,
		Inputs:           []string{inputs},
	}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LICENSE is missing")
	assert.Contains(t, out.String(), "Found linux_amd64 driver:")
	assert.Contains(t, out.String(), "Generating foo linux amd64 v1.0.0")
}

// TestGenerateBadTemplate tests the manifest template error path
func TestGenerateBadTemplate(t *testing.T) {
	template := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(template, []byte("name = [unclosed\n"), 0o644))

	inputs := filepath.Join(t.TempDir(), "drivers-linux-amd64")
	require.NoError(t, os.MkdirAll(inputs, 0o755))

	err := Generate(t.Context(), Options{
		Output:           filepath.Join(t.TempDir(), "dist"),
		Name:             "foo",
		Root:             t.TempDir(),
		ManifestTemplate: template,
		Inputs:           []string{inputs},
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest.toml")
}
