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
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// bucketManifest indexes the published packages of a bucket, in the
// layout the dbc driver manager consumes.
type bucketManifest struct {
	Drivers []bucketDriver `yaml:"drivers"`
}

type bucketDriver struct {
	Name string `yaml:"name"`
	// Description is non-standard: it feeds the driver index only,
	// dbc drops it at install time.
	Description string     `yaml:"description"`
	License     string     `yaml:"license"`
	Path        string     `yaml:"path"`
	URLs        []string   `yaml:"urls"`
	PkgInfo     []*pkgInfo `yaml:"pkginfo"`
}

type pkgInfo struct {
	Version  string     `yaml:"version"`
	Packages []pkgEntry `yaml:"packages"`
}

type pkgEntry struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
}

// bucketIndex accumulates package entries as archives are written.
type bucketIndex struct {
	driver   bucketDriver
	versions map[string]*pkgInfo
	order    []string
}

func newBucketIndex(manifest map[string]any, path string) (*bucketIndex, error) {
	name, ok := manifest["name"].(string)
	if !ok {
		return nil, errors.New("manifest missing required `name`")
	}
	license, ok := manifest["license"].(string)
	if !ok {
		return nil, errors.New("manifest missing required `license`")
	}
	description := name
	if d, ok := manifest["description"].(string); ok {
		description = d
	}
	return &bucketIndex{
		driver: bucketDriver{
			Name:        name,
			Description: description,
			License:     license,
			Path:        path,
			URLs:        []string{"https://adbc-drivers.org"},
		},
		versions: map[string]*pkgInfo{},
	}, nil
}

func (b *bucketIndex) add(pkg Package, filename string) {
	info, ok := b.versions[pkg.Version]
	if !ok {
		info = &pkgInfo{Version: pkg.Version}
		b.versions[pkg.Version] = info
		b.order = append(b.order, pkg.Version)
	}
	info.Packages = append(info.Packages, pkgEntry{
		Platform: fmt.Sprintf("%s_%s", pkg.Platform, pkg.Architecture),
		URL:      fmt.Sprintf("%s/%s/%s", b.driver.Path, pkg.Version, filename),
	})
}

func (b *bucketIndex) marshal() ([]byte, error) {
	driver := b.driver
	for _, version := range b.order {
		driver.PkgInfo = append(driver.PkgInfo, b.versions[version])
	}
	return yaml.Marshal(bucketManifest{Drivers: []bucketDriver{driver}})
}
