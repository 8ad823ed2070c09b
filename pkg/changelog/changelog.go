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
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/adbc-drivers/dev/internal/gitutil"
)

// sections maps the curated commit categories to their changelog
// headings, in render order.
var sections = []struct {
	category string
	heading  string
}{
	{"feat", "New Features"},
	{"fix", "Bug Fixes"},
	{"perf", "Performance Improvements"},
	{"docs", "Documentation Updates"},
}

// now is stubbed in tests so the release date is stable.
var now = time.Now

// driverDisplayName reads the driver's display name from the
// manifest.toml recorded in the released tree. Reading from the tag
// rather than the work tree keeps the notes honest when releasing an
// older commit.
func driverDisplayName(repo *gitutil.Repo, subdir, rev string) (string, error) {
	name := "manifest.toml"
	if subdir != "." {
		name = path.Join(subdir, "manifest.toml")
	}
	data, err := repo.ReadFileAt(rev, name)
	if err != nil {
		return "", err
	}
	var manifest struct {
		Name string `toml:"name"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("%s at %s: %w", name, rev, err)
	}
	if manifest.Name == "" {
		return "", fmt.Errorf("%s at %s has no name", name, rev)
	}
	return manifest.Name, nil
}

// touches reports whether any changed path falls under the driver
// subdirectory. A driver at the repository root claims every commit.
func touches(subdir string, paths []string) bool {
	if subdir == "." {
		return true
	}
	prefix := subdir + "/"
	for _, p := range paths {
		if p == subdir || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Generate renders the release title and notes for the commits
// reachable from endRef but not from startRef, scoped to the driver
// living in subdir. startRef may be empty for a first release. The
// displayed version should not carry the tag's v prefix.
func Generate(repo *gitutil.Repo, subdir, version, startRef, endRef string) (title, notes string, err error) {
	driver, err := driverDisplayName(repo, subdir, endRef)
	if err != nil {
		return "", "", err
	}

	commits, err := repo.CommitsSince(endRef, startRef)
	if err != nil {
		return "", "", err
	}

	curated := map[string][]*Title{}
	var all []gitutil.Commit
	for _, c := range commits {
		if !touches(subdir, c.Paths) {
			continue
		}
		all = append(all, c)
		if parsed, ok := ParseTitle(c.Title); ok {
			curated[parsed.Category] = append(curated[parsed.Category], parsed)
		}
	}

	date := now().UTC().Format("2006-01-02")
	title = fmt.Sprintf("%s %s (%s)", driver, version, date)

	var lines []string
	for _, section := range sections {
		titles := curated[section.category]
		if len(titles) == 0 {
			continue
		}
		lines = append(lines, "## "+section.heading, "")
		for _, t := range titles {
			lines = append(lines, "- "+t.Subject)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Detailed Changelog", "")
	for _, c := range all {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.ShortID, c.Title))
	}

	return title, strings.TrimSpace(strings.Join(lines, "\n")), nil
}
