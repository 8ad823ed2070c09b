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

package validation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDriverID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"postgresql", true},
		{"my_driver", true},
		{"a", true},
		{"a_b_c", true},
		{"", false},
		{"Postgresql", false},
		{"_driver", false},
		{"driver_", false},
		{"a__b", false},
		{"my-driver", false},
		{"driver2", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidDriverID(tt.id))
		})
	}
}

func TestNormalizeRepoName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "postgresql", want: "postgresql"},
		{name: "mixed case and dashes", in: "My-Postgres.Driver", want: "my_postgres_driver"},
		{name: "digits collapse", in: "db2", want: "db"},
		{name: "all invalid", in: "123", want: ""},
		{name: "trims underscores", in: "_driver_", want: "driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRepoName(tt.in))
		})
	}
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "Postgresql", className("postgresql"))
	assert.Equal(t, "MyDriver", className("my_driver"))
	assert.Equal(t, "My Driver", driverName("my_driver"))
}

func TestDefaultDriverID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My-Postgres-Driver")
	require.NoError(t, os.Mkdir(dir, 0o755))
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	assert.Equal(t, "my_postgres_driver", DefaultDriverID(dir))

	// Outside any repository there is no default.
	assert.Empty(t, DefaultDriverID(os.TempDir()))
}

func TestPromptDriverID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultID  string
		want       string
		wantOutput string
		wantErr    bool
	}{
		{
			name:      "accepts default",
			input:     "\n",
			defaultID: "postgresql",
			want:      "postgresql",
		},
		{
			name:  "explicit id",
			input: "  my_driver  \n",
			want:  "my_driver",
		},
		{
			name:       "rejects invalid then accepts",
			input:      "Bad-ID\nmy_driver\n",
			want:       "my_driver",
			wantOutput: "Invalid driver ID.",
		},
		{
			name:       "rejects empty without default",
			input:      "\nx\n",
			want:       "x",
			wantOutput: "Driver ID cannot be empty",
		},
		{
			name:    "eof",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			id, err := PromptDriverID(strings.NewReader(tt.input), &out, tt.defaultID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			if tt.wantOutput != "" {
				assert.Contains(t, out.String(), tt.wantOutput)
			}
		})
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, Init(dir, "postgresql_wire", &out))

	validationDir := filepath.Join(dir, "validation")
	testsDir := filepath.Join(validationDir, "tests")

	for _, path := range []string{
		filepath.Join(validationDir, "pytest.ini"),
		filepath.Join(validationDir, "README.md"),
		filepath.Join(validationDir, "driver-template.md"),
		filepath.Join(validationDir, "queries", "ingest", ".gitkeep"),
		filepath.Join(validationDir, "queries", "type", "bind", ".gitkeep"),
		filepath.Join(validationDir, "queries", "type", "literal", ".gitkeep"),
		filepath.Join(validationDir, "queries", "type", "select", ".gitkeep"),
		filepath.Join(testsDir, "__init__.py"),
		filepath.Join(testsDir, "conftest.py"),
		filepath.Join(testsDir, "postgresql_wire.py"),
		filepath.Join(testsDir, "generate_documentation.py"),
		filepath.Join(testsDir, "test_connection.py"),
		filepath.Join(testsDir, "test_ingest.py"),
		filepath.Join(testsDir, "test_query.py"),
		filepath.Join(testsDir, "test_statement.py"),
		filepath.Join(testsDir, "postgresql_wire", "test_uri.py"),
	} {
		assert.FileExists(t, path)
	}

	read := func(path ...string) string {
		content, err := os.ReadFile(filepath.Join(path...))
		require.NoError(t, err)
		return string(content)
	}

	driver := read(testsDir, "postgresql_wire.py")
	assert.Contains(t, driver, "class PostgresqlWireQuirks(DriverQuirks):")
	assert.Contains(t, driver, `name = "postgresql_wire"`)
	assert.Contains(t, driver, "POSTGRESQL_WIRE_DSN")
	assert.Contains(t, driver, "libadbc_driver_postgresql_wire")

	conftest := read(testsDir, "conftest.py")
	assert.Contains(t, conftest, "from . import postgresql_wire")
	assert.Contains(t, conftest, "postgresql_wire.QUIRKS")
	assert.NotContains(t, conftest, "{{")

	connection := read(testsDir, "test_connection.py")
	assert.Contains(t, connection, "class TestConnection(ConnectionBase):")
	assert.Contains(t, connection, "adbc_drivers_validation.test_connection")

	assert.Contains(t, read(validationDir, "README.md"), "POSTGRESQL_WIRE_DSN")
	assert.Contains(t, read(validationDir, "driver-template.md"), "# Postgresql Wire")

	assert.Contains(t, out.String(), "✓ Created validation suite structure at")
	assert.Contains(t, out.String(), "✓ Driver ID: postgresql_wire")
	assert.Contains(t, out.String(), "build/libadbc_driver_postgresql_wire.{so,dylib,dll}")
	assert.Contains(t, out.String(), "POSTGRESQL_WIRE_DSN")
}

func TestInitErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, "postgresql", &bytes.Buffer{}))

	err := Init(dir, "postgresql", &bytes.Buffer{})
	assert.ErrorContains(t, err, "already exists")

	err = Init(t.TempDir(), "Bad-ID", &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid driver id")

	err = Init(filepath.Join(dir, "missing"), "postgresql", &bytes.Buffer{})
	assert.ErrorContains(t, err, "does not exist")
}

func TestRunMissingSuite(t *testing.T) {
	err := Run(t.Context(), t.TempDir(), nil)
	assert.ErrorContains(t, err, "run 'adbc-validation init' first")
}
