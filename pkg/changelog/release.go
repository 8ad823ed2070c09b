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

package changelog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/adbc-drivers/dev/internal/gitutil"
	"github.com/adbc-drivers/dev/internal/run"
)

// ParseTag splits a release tag into the driver subdirectory and the
// version. Tags follow the nested-module convention: v1.2.3 releases
// the repository root, <dir>/v1.2.3 releases a driver subdirectory.
func ParseTag(tag string) (subdir, version string, err error) {
	subdir, version = ".", tag
	if i := strings.LastIndexByte(tag, '/'); i >= 0 {
		subdir, version = tag[:i], tag[i+1:]
	}
	if !strings.HasPrefix(version, "v") || !semver.IsValid(version) {
		return "", "", fmt.Errorf("tag %q does not end in a vX.Y.Z version", tag)
	}
	return subdir, version, nil
}

// PreviousTag finds the newest tag in the same namespace whose version
// is below the one being released, or "" for a first release.
// Pre-release modifiers like -dev are not expected on release tags but
// order correctly if present.
func PreviousTag(repo *gitutil.Repo, subdir, version string) (string, error) {
	prefix := "v"
	if subdir != "." {
		prefix = subdir + "/v"
	}
	tags, err := repo.Tags()
	if err != nil {
		return "", err
	}
	best, bestVersion := "", ""
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		candidate := tag[len(prefix)-1:]
		if !semver.IsValid(candidate) || semver.Compare(candidate, version) >= 0 {
			continue
		}
		if bestVersion == "" || semver.Compare(candidate, bestVersion) > 0 {
			best, bestVersion = tag, candidate
		}
	}
	return best, nil
}

// Notes computes the release title and notes for a tag that exists in
// the repository at root.
func Notes(root, tag string) (title, notes string, err error) {
	subdir, version, err := ParseTag(tag)
	if err != nil {
		return "", "", err
	}
	repo, err := gitutil.Open(root)
	if err != nil {
		return "", "", err
	}
	previous, err := PreviousTag(repo, subdir, version)
	if err != nil {
		return "", "", err
	}
	return Generate(repo, subdir, strings.TrimPrefix(version, "v"), previous, tag)
}

// Release creates a draft GitHub release for an existing tag, with
// the generated changelog as its notes. In dry-run mode the gh
// invocation is printed but not executed.
func Release(ctx context.Context, root, tag string, dryRun bool, out io.Writer) error {
	title, notes, err := Notes(root, tag)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "# %s\n\n%s\n", title, notes)

	dir, err := os.MkdirTemp("", "adbc-release-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	notesFile := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(notesFile, []byte(notes), 0o644); err != nil {
		return err
	}

	args := []string{
		"release", "create", tag,
		"--draft", "--title", title, "--verify-tag", "--notes-file", notesFile,
	}
	fmt.Fprintln(out, "*", "gh", strings.Join(args, " "))
	if dryRun {
		fmt.Fprintln(out, "Dry run, not actually releasing")
		return nil
	}
	return run.Command(ctx, "gh", args, run.Options{Dir: root})
}
