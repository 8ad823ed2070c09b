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

// Package gittest builds throwaway git repositories for tests,
// without shelling out to git.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Repo is a git repository in a test temp directory.
type Repo struct {
	T    *testing.T
	Repo *git.Repository
	Dir  string
	when time.Time
}

// New initializes an empty repository under t.TempDir.
func New(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &Repo{
		T:    t,
		Repo: repo,
		Dir:  dir,
		when: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Write creates or replaces a file in the work tree.
func (r *Repo) Write(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Dir, name)
	require.NoError(r.T, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.T, os.WriteFile(path, []byte(content), 0o644))
}

// Commit stages the named files and commits them with a strictly
// increasing committer time so walk order is deterministic.
func (r *Repo) Commit(msg string, names ...string) plumbing.Hash {
	r.T.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.T, err)
	for _, name := range names {
		_, err = wt.Add(name)
		require.NoError(r.T, err)
	}
	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: r.when}
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(r.T, err)
	return hash
}

// Tag creates a lightweight tag.
func (r *Repo) Tag(name string, hash plumbing.Hash) {
	r.T.Helper()
	_, err := r.Repo.CreateTag(name, hash, nil)
	require.NoError(r.T, err)
}

// AnnotatedTag creates an annotated tag.
func (r *Repo) AnnotatedTag(name string, hash plumbing.Hash) {
	r.T.Helper()
	r.when = r.when.Add(time.Minute)
	_, err := r.Repo.CreateTag(name, hash, &git.CreateTagOptions{
		Message: "release " + name,
		Tagger:  &object.Signature{Name: "Dev", Email: "dev@example.com", When: r.when},
	})
	require.NoError(r.T, err)
}
