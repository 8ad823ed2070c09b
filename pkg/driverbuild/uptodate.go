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
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// sourceExts are the file types whose changes trigger a rebuild.
var sourceExts = []string{".go", ".c", ".cc", ".cpp", ".h", ".rs"}

// manifestNames are the dependency manifests that also count as
// sources.
var manifestNames = []string{"go.mod", "go.sum", "Cargo.toml", "Cargo.lock"}

// skipDirs are build outputs and caches that never gate a rebuild.
var skipDirs = []string{".git", "build", "target", "vendor"}

// UpToDate reports whether the built library exists and is newer than
// every source file under the driver root.
func UpToDate(cfg *Config, target string) bool {
	info, err := os.Stat(filepath.Join(cfg.RepoRoot, "build", target))
	if err != nil {
		return false
	}
	builtAt := info.ModTime()
	fresh := true
	_ = filepath.WalkDir(cfg.DriverRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if slices.Contains(skipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSource(d.Name()) {
			return nil
		}
		fi, err := d.Info()
		if err != nil || fi.ModTime().After(builtAt) {
			fresh = false
			return filepath.SkipAll
		}
		return nil
	})
	return fresh
}

func isSource(name string) bool {
	if slices.Contains(manifestNames, name) {
		return true
	}
	return slices.Contains(sourceExts, filepath.Ext(name))
}
