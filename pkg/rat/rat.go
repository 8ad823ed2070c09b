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

// Package rat runs the repository license audits: a fast copyright
// header pass suited to pre-commit hooks, and the full Apache RAT
// check CI runs over a tarball of the tracked tree.
//
// Both audits honor .rat-excludes at the repository root. Its
// patterns are fnmatch-style globs where * crosses directory
// separators, so *.json excludes JSON files at any depth. The RAT
// check additionally reads .rat-apache, the list of files imported
// from Apache repositories that must carry the "modified from its
// original version" provenance header.
package rat

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/adbc-drivers/dev/internal/gitutil"
)

// trackedFile pairs an index path with its current worktree bytes.
type trackedFile struct {
	name string
	data []byte
}

// loadTracked reads every tracked file's worktree contents, the same
// view `git stash create` would snapshot. Files deleted from the work
// tree but still in the index are skipped.
func loadTracked(root string) ([]trackedFile, error) {
	repo, err := gitutil.Open(root)
	if err != nil {
		return nil, err
	}
	names, err := repo.TrackedFiles()
	if err != nil {
		return nil, err
	}
	files := make([]trackedFile, 0, len(names))
	for _, name := range names {
		data, ok, err := repo.WorktreeFile(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		files = append(files, trackedFile{name: name, data: data})
	}
	return files, nil
}

type patternList []*regexp.Regexp

func (ps patternList) match(name string) bool {
	for _, p := range ps {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// loadPatterns reads a one-glob-per-line exclusion file, skipping
// blank lines and comments. A missing file yields an empty list.
func loadPatterns(path string) (patternList, error) {
	lines, err := loadLines(path)
	if err != nil {
		return nil, err
	}
	patterns := make(patternList, 0, len(lines))
	for _, line := range lines {
		re, err := fnmatchRegexp(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// loadNameSet reads a one-path-per-line file into a set.
func loadNameSet(path string) (map[string]bool, error) {
	lines, err := loadLines(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(lines))
	for _, line := range lines {
		set[line] = true
	}
	return set, nil
}

func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// fnmatchRegexp translates an fnmatch-style glob into an anchored
// regexp. Unlike path.Match, * matches across separators, which is
// how the exclusion files are written.
func fnmatchRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`\A`)
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				// unbalanced bracket, treat as a literal
				b.WriteString(`\[`)
				continue
			}
			set := strings.ReplaceAll(pattern[i+1:j], `\`, `\\`)
			if strings.HasPrefix(set, "!") {
				set = "^" + set[1:]
			}
			b.WriteString("[" + set + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`\z`)
	return regexp.Compile(b.String())
}

// firstLines returns the first n lines of data, newlines included.
func firstLines(data []byte, n int) []byte {
	off := 0
	for i := 0; i < n; i++ {
		nl := bytes.IndexByte(data[off:], '\n')
		if nl < 0 {
			return data
		}
		off += nl + 1
	}
	return data[:off]
}
