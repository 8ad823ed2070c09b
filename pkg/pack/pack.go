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

// Package pack turns built driver libraries into distributable
// packages: a tarball per platform holding the library, its MANIFEST,
// LICENSE and NOTICE, plus a bucket manifest indexing them all.
package pack

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
)

// Platform is an operating system a driver package targets.
type Platform string

const (
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
	Windows Platform = "windows"
)

// Architecture is a CPU architecture a driver package targets.
type Architecture string

const (
	AMD64 Architecture = "amd64" // also known as x86_64, x64
	ARM64 Architecture = "arm64" // also known as aarch64, arm64v8
)

// ParsePlatform validates a platform token from an artifact name.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case Linux, MacOS, Windows:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ParseArchitecture validates an architecture token from an artifact
// name.
func ParseArchitecture(s string) (Architecture, error) {
	switch a := Architecture(strings.ToLower(s)); a {
	case AMD64, ARM64:
		return a, nil
	}
	return "", fmt.Errorf("unknown architecture %q", s)
}

// NormalizeDriverName converts a shared library file name like
// libadbc_driver_redshift.so to the bare driver name redshift.
func NormalizeDriverName(filename string) (string, error) {
	name, _, _ := strings.Cut(filename, ".")
	name = strings.TrimPrefix(name, "lib")
	parts := strings.Split(name, "_")
	if len(parts) != 3 || parts[0] != "adbc" || parts[1] != "driver" {
		return "", fmt.Errorf("invalid driver name: %s", name)
	}
	return parts[2], nil
}

// Driver is one built shared library found in an input directory.
type Driver struct {
	Platform     Platform
	Architecture Architecture
	Path         string
}

var libraryExts = map[string]bool{".dll": true, ".dylib": true, ".so": true}

// FindDrivers scans CI artifact directories for the named driver's
// shared libraries. Directory names carry the target, in the form
// drivers-<platform>-<architecture>. Libraries for other drivers are
// skipped.
func FindDrivers(driverName string, inputDirs []string, out io.Writer) ([]Driver, error) {
	var drivers []Driver
	for _, inputDir := range inputDirs {
		parts := strings.Split(filepath.Base(inputDir), "-")
		if len(parts) != 3 || parts[0] != "drivers" {
			return nil, fmt.Errorf("invalid input directory name: %s (expected drivers-<platform>-<architecture>)", filepath.Base(inputDir))
		}
		platform, err := ParsePlatform(parts[1])
		if err != nil {
			return nil, err
		}
		arch, err := ParseArchitecture(parts[2])
		if err != nil {
			return nil, err
		}
		err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if !libraryExts[filepath.Ext(d.Name())] {
				return nil
			}
			// Skip libraries that belong to other drivers, and
			// anything that does not look like a driver at all.
			name, err := NormalizeDriverName(d.Name())
			if err != nil || name != driverName {
				return nil
			}
			drivers = append(drivers, Driver{Platform: platform, Architecture: arch, Path: path})
			fmt.Fprintf(out, "Found %s_%s driver: %s\n", platform, arch, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return drivers, nil
}

// ValidateManifest checks the package manifest that ships inside each
// driver package.
func ValidateManifest(manifest map[string]any) error {
	for _, field := range []string{"name", "description", "publisher", "license", "version"} {
		value, present := manifest[field]
		if !present {
			return fmt.Errorf("manifest missing required `%s`", field)
		}
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("manifest `%s` must be a string", field)
		}
		if s == "" {
			return fmt.Errorf("manifest `%s` must not be empty", field)
		}
	}

	value, present := manifest["Files"]
	if !present {
		return fmt.Errorf("manifest missing required `Files` section")
	}
	files, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("manifest `Files` must be a table")
	}
	driver, present := files["driver"]
	if !present {
		return fmt.Errorf("manifest missing required `Files.driver`")
	}
	s, ok := driver.(string)
	if !ok {
		return fmt.Errorf("manifest `Files.driver` must be a string")
	}
	if s == "" {
		return fmt.Errorf("manifest `Files.driver` must not be empty")
	}
	return nil
}
