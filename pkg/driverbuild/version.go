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

package driverbuild

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/adbc-drivers/dev/internal/gitutil"
	"github.com/adbc-drivers/dev/internal/run"
)

// DetectVersion derives a driver's version from git tags. Tags follow
// the Go convention for nested modules: v1.2.3 for a driver at the
// repository root, <dir>/v1.2.3 for a driver in a subdirectory.
//
// In strict mode the work tree must sit exactly on the latest tag and
// be clean. Otherwise the version is annotated: commits past the tag
// append -dev.<count>.<sha>, and uncommitted changes append -dirty.
func DetectVersion(driverRoot string, strict bool) (string, error) {
	abs, err := filepath.Abs(driverRoot)
	if err != nil {
		return "", err
	}
	if !hasManifest(abs) {
		return "", fmt.Errorf("%s does not contain a Cargo.toml or go.mod", driverRoot)
	}
	repo, err := gitutil.Open(abs)
	if err != nil {
		return "", err
	}
	prefix, err := tagPrefix(repo.Root(), abs)
	if err != nil {
		return "", err
	}

	tags, err := repo.Tags()
	if err != nil {
		return "", err
	}
	latest, version := "", ""
	for _, tag := range tags {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		// Slice keeps the leading v so semver can parse it.
		candidate := tag[len(prefix)-1:]
		if !semver.IsValid(candidate) {
			continue
		}
		if latest == "" || semver.Compare(candidate, version) > 0 {
			latest, version = tag, candidate
		}
	}

	if latest == "" {
		if strict {
			return "", fmt.Errorf("no tags found for driver %s", driverRoot)
		}
		version = "unknown"
	} else {
		ahead, err := repo.CountSince("HEAD", latest)
		if err != nil {
			return "", err
		}
		if ahead > 0 {
			if strict {
				return "", fmt.Errorf("driver %s is not on tag %s, but has %d commits since", driverRoot, latest, ahead)
			}
			short, err := repo.HeadShort()
			if err != nil {
				return "", err
			}
			version += fmt.Sprintf("-dev.%d.%s", ahead, short)
		}
	}

	changes, err := repo.UncommittedChanges()
	if err != nil {
		return "", err
	}
	if len(changes) > 0 {
		if strict {
			run.Info(repo.Root(), "has uncommitted changes. `git status --porcelain`:")
			for _, line := range changes {
				run.Info(">", line)
			}
			return "", fmt.Errorf("%s has uncommitted changes", repo.Root())
		}
		version += "-dirty"
	}
	return version, nil
}

// tagPrefix maps a driver directory onto its tag namespace: v at the
// repository root, <relative>/v in a subdirectory.
func tagPrefix(root, driverRoot string) (string, error) {
	rel, err := filepath.Rel(resolvePath(root), resolvePath(driverRoot))
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "v", nil
	}
	return filepath.ToSlash(rel) + "/v", nil
}

// resolvePath follows symlinks so paths reported by go-git and by the
// OS compare equal.
func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
