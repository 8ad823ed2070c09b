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
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeDriverName tests library file name parsing
func TestNormalizeDriverName(t *testing.T) {
	tests := []struct {
		filename string
		want     string // empty means invalid
	}{
		{"libadbc_driver_foo.dll", "foo"},
		{"libadbc_driver_foo.so", "foo"},
		{"libadbc_driver_foo.dylib", "foo"},
		{"libadbc_driver_foo-bar.dll", "foo-bar"},
		{"adbc_driver_foo-bar.dll", "foo-bar"},
		{"adbc-driver-foo-bar.dll", ""},
		{"libcolumnar_driver_foo-bar.dll", ""},
		{"libadbc_driverz_foo-bar.dll", ""},
		{"libadbc_foo-bar.dll", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := NormalizeDriverName(tt.filename)
			if tt.want == "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid driver name")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestValidateManifest tests the required fields one by one
func TestValidateManifest(t *testing.T) {
	manifest := map[string]any{}

	requireErr := func(want string) {
		t.Helper()
		err := ValidateManifest(manifest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), want)
	}

	requireErr("missing required `name`")
	manifest["name"] = "example"
	requireErr("missing required `description`")
	manifest["description"] = "An example package"
	requireErr("missing required `publisher`")
	manifest["publisher"] = "Example Publisher"
	requireErr("missing required `license`")
	manifest["license"] = "Apache-2.0"
	requireErr("missing required `version`")
	manifest["version"] = "1.0.0"
	requireErr("missing required `Files`")
	manifest["Files"] = map[string]any{}
	requireErr("missing required `Files.driver`")

	manifest["Files"] = map[string]any{"driver": "libexample.so"}
	require.NoError(t, ValidateManifest(manifest))

	manifest["name"] = ""
	requireErr("`name` must not be empty")
	manifest["name"] = 42
	requireErr("`name` must be a string")
	manifest["name"] = "example"
	manifest["Files"] = "not a table"
	requireErr("`Files` must be a table")
}

// TestFindDrivers tests artifact directory scanning
func TestFindDrivers(t *testing.T) {
	root := t.TempDir()
	write := func(name string) {
		t.Helper()
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("lib"), 0o644))
	}
	write("drivers-linux-amd64/libadbc_driver_foo.so")
	write("drivers-linux-amd64/libadbc_driver_other.so")
	write("drivers-linux-amd64/libmystery.so")
	write("drivers-linux-amd64/README.txt")
	write("drivers-macos-arm64/nested/libadbc_driver_foo.dylib")

	var out bytes.Buffer
	drivers, err := FindDrivers("foo", []string{
		filepath.Join(root, "drivers-linux-amd64"),
		filepath.Join(root, "drivers-macos-arm64"),
	}, &out)
	require.NoError(t, err)
	require.Len(t, drivers, 2)

	assert.Equal(t, Linux, drivers[0].Platform)
	assert.Equal(t, AMD64, drivers[0].Architecture)
	assert.Equal(t, "libadbc_driver_foo.so", filepath.Base(drivers[0].Path))
	assert.Equal(t, MacOS, drivers[1].Platform)
	assert.Equal(t, ARM64, drivers[1].Architecture)
	assert.Equal(t, "libadbc_driver_foo.dylib", filepath.Base(drivers[1].Path))

	assert.Contains(t, out.String(), "Found linux_amd64 driver:")
	assert.Contains(t, out.String(), "Found macos_arm64 driver:")
	assert.NotContains(t, out.String(), "other")
}

// TestFindDriversBadInputs tests the artifact naming convention
func TestFindDriversBadInputs(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr string
	}{
		{name: "no prefix", dir: "artifacts-linux-amd64", wantErr: "invalid input directory name"},
		{name: "too few parts", dir: "drivers-linux", wantErr: "expected drivers-<platform>-<architecture>"},
		{name: "bad platform", dir: "drivers-beos-amd64", wantErr: `unknown platform "beos"`},
		{name: "bad arch", dir: "drivers-linux-mips", wantErr: `unknown architecture "mips"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), tt.dir)
			require.NoError(t, os.MkdirAll(dir, 0o755))
			_, err := FindDrivers("foo", []string{dir}, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestGeneratePackages tests manifest completion per found driver
func TestGeneratePackages(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "libadbc_driver_foo.so")
	require.NoError(t, os.WriteFile(lib, []byte("shared library bytes"), 0o644))

	manifest := map[string]any{
		"name":        "Foo Driver",
		"description": "Connects to Foo",
		"publisher":   "Example Corp",
		"license":     "Apache-2.0",
		"version":     "overridden below",
	}
	drivers := []Driver{{Platform: Linux, Architecture: AMD64, Path: lib}}

	packages, err := GeneratePackages(manifest, "foo", "v1.2.3", drivers)
	require.NoError(t, err)
	require.Len(t, packages, 1)

	pkg := packages[0]
	assert.Equal(t, "foo", pkg.Name)
	assert.Equal(t, Linux, pkg.Platform)
	assert.Equal(t, AMD64, pkg.Architecture)
	assert.Equal(t, "v1.2.3", pkg.Version)

	require.Len(t, pkg.Files, 2)
	assert.Equal(t, "libadbc_driver_foo.so", pkg.Files[0].Name)
	assert.Equal(t, []byte("shared library bytes"), pkg.Files[0].Data)
	assert.Equal(t, "MANIFEST", pkg.Files[1].Name)

	var decoded map[string]any
	require.NoError(t, toml.Unmarshal(pkg.Files[1].Data, &decoded))
	assert.Equal(t, "v1.2.3", decoded["version"])
	assert.Equal(t, "Foo Driver", decoded["name"])
	files, ok := decoded["Files"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "libadbc_driver_foo.so", files["driver"])

	// The template itself is untouched.
	assert.Equal(t, "overridden below", manifest["version"])
	_, hasFiles := manifest["Files"]
	assert.False(t, hasFiles)
}

// TestGeneratePackagesInvalidManifest tests that validation runs
func TestGeneratePackagesInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "libadbc_driver_foo.so")
	require.NoError(t, os.WriteFile(lib, []byte("x"), 0o644))

	manifest := map[string]any{"name": "Foo Driver"}
	drivers := []Driver{{Platform: Linux, Architecture: AMD64, Path: lib}}

	_, err := GeneratePackages(manifest, "foo", "v1.2.3", drivers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required `description`")
}
