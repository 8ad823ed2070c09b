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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/adbc-drivers/dev/pkg/driverbuild"
)

// PackageFile is one entry of a driver package archive.
type PackageFile struct {
	Name string
	Data []byte
}

// Package is a driver package for one platform, ready to be archived.
type Package struct {
	Name         string
	Platform     Platform
	Architecture Architecture
	Version      string
	// Files in archive order: the library, MANIFEST, then any extras.
	Files []PackageFile
}

// GeneratePackages assembles one package per found driver library.
// The manifest template is completed with the detected version and
// the library file name, then validated.
func GeneratePackages(manifest map[string]any, driverName, version string, drivers []Driver) ([]Package, error) {
	var packages []Package
	for _, driver := range drivers {
		data, err := os.ReadFile(driver.Path)
		if err != nil {
			return nil, err
		}
		libName := filepath.Base(driver.Path)

		completed := make(map[string]any, len(manifest)+2)
		for k, v := range manifest {
			completed[k] = v
		}
		completed["version"] = version
		completed["Files"] = map[string]any{"driver": libName}
		if err := ValidateManifest(completed); err != nil {
			return nil, err
		}
		encoded, err := toml.Marshal(completed)
		if err != nil {
			return nil, err
		}

		packages = append(packages, Package{
			Name:         driverName,
			Platform:     driver.Platform,
			Architecture: driver.Architecture,
			Version:      version,
			Files: []PackageFile{
				{Name: libName, Data: data},
				{Name: "MANIFEST", Data: encoded},
			},
		})
	}
	return packages, nil
}

// Options configure one packaging run.
type Options struct {
	// Output is the directory the packages and bucket manifest land in.
	Output string
	// Name is the driver name the packages are for.
	Name string
	// Root is the driver's directory in version control, for version
	// detection.
	Root string
	// Release requires a clean work tree sitting exactly on a tag.
	Release bool
	// ManifestTemplate is the path to the driver's manifest.toml. Its
	// directory is also searched for license.tpl and NOTICE.txt.
	ManifestTemplate string
	// Inputs are the CI artifact directories holding built libraries.
	Inputs []string
}

// Generate packages the driver for every platform found in the
// inputs and writes the bucket manifest that indexes the results.
func Generate(ctx context.Context, opts Options, out io.Writer) error {
	drivers, err := FindDrivers(opts.Name, opts.Inputs, out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return err
	}

	templateDir := filepath.Dir(opts.ManifestTemplate)
	var license []byte
	if tpl := filepath.Join(templateDir, "license.tpl"); fileExists(tpl) {
		license, err = LicenseReport(ctx, templateDir, tpl)
		if err != nil {
			return err
		}
	}
	var notice []byte
	if path := filepath.Join(templateDir, "NOTICE.txt"); fileExists(path) {
		notice, err = os.ReadFile(path)
		if err != nil {
			return err
		}
	}

	templateData, err := os.ReadFile(opts.ManifestTemplate)
	if err != nil {
		return err
	}
	var manifest map[string]any
	if err := toml.Unmarshal(templateData, &manifest); err != nil {
		return fmt.Errorf("%s: %w", opts.ManifestTemplate, err)
	}

	version, err := driverbuild.DetectVersion(opts.Root, opts.Release)
	if err != nil {
		return err
	}
	packages, err := GeneratePackages(manifest, opts.Name, version, drivers)
	if err != nil {
		return err
	}

	index, err := newBucketIndex(manifest, opts.Name)
	if err != nil {
		return err
	}
	for _, pkg := range packages {
		fmt.Fprintln(out, "Generating", pkg.Name, pkg.Platform, pkg.Architecture, pkg.Version)

		if len(license) == 0 {
			return errors.New("LICENSE is missing")
		}
		pkg.Files = append(pkg.Files, PackageFile{Name: "LICENSE", Data: license})
		if len(notice) > 0 {
			pkg.Files = append(pkg.Files, PackageFile{Name: "NOTICE", Data: notice})
		}

		filename := fmt.Sprintf("%s_%s_%s_%s.tar.gz", pkg.Name, pkg.Platform, pkg.Architecture, pkg.Version)
		subdir := filepath.Join(opts.Output, pkg.Name, pkg.Version)
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			return err
		}
		output := filepath.Join(subdir, filename)
		fmt.Fprintln(out, "Output:", output)
		if err := WriteArchive(output, pkg.Files); err != nil {
			return err
		}

		index.add(pkg, filename)
	}

	data, err := index.marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(opts.Output, "manifest.yaml"), data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(out, "Generated manifest.yaml")
	_, err = out.Write(data)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
