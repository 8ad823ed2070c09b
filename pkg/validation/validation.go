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

// Package validation scaffolds and drives a driver's validation suite.
package validation

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/adbc-drivers/dev/internal/gitutil"
)

// The scaffolded files are mostly Python because the validation suite
// itself is; the templates are kept verbatim apart from the driver
// identifiers.
//
//go:embed all:templates
var templatesFS embed.FS

// driverIDRe accepts lowercase names with single interior underscores,
// e.g. "postgresql" or "my_driver".
var driverIDRe = regexp.MustCompile(`^[a-z]+(_[a-z]+)*$`)

var nonIDRe = regexp.MustCompile(`[^a-z_]`)

// suiteTests are the shared suites every driver imports.
var suiteTests = []string{"connection", "ingest", "query", "statement"}

// ValidDriverID reports whether id is usable as a driver identifier.
func ValidDriverID(id string) bool {
	return driverIDRe.MatchString(id)
}

// DefaultDriverID derives a driver id from the name of the enclosing
// git repository, or returns "" when there is no usable default.
func DefaultDriverID(dir string) string {
	repo, err := gitutil.Open(dir)
	if err != nil {
		return ""
	}
	return normalizeRepoName(filepath.Base(repo.Root()))
}

func normalizeRepoName(name string) string {
	name = nonIDRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(name, "_")
}

// PromptDriverID asks for a driver id until a valid one is entered. An
// empty response takes the default when one is offered.
func PromptDriverID(in io.Reader, out io.Writer, defaultID string) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		if defaultID != "" {
			fmt.Fprintf(out, "Driver ID [%s]: ", defaultID)
		} else {
			fmt.Fprint(out, "Driver ID: ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("no driver id given")
		}
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			id = defaultID
		}
		if id == "" {
			fmt.Fprintln(out, "Driver ID cannot be empty")
			continue
		}
		if !ValidDriverID(id) {
			fmt.Fprintln(out, "Invalid driver ID. Use lowercase letters and underscores (not at ends).")
			continue
		}
		return id, nil
	}
}

// Init scaffolds validation/ under targetDir for the given driver.
func Init(targetDir, driverID string, out io.Writer) error {
	info, err := os.Stat(targetDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s does not exist", targetDir)
	}
	if !ValidDriverID(driverID) {
		return fmt.Errorf("invalid driver id %q: use lowercase letters and underscores (not at ends)", driverID)
	}
	validationDir := filepath.Join(targetDir, "validation")
	if _, err := os.Stat(validationDir); err == nil {
		return fmt.Errorf("%s already exists", validationDir)
	}

	if err := scaffold(validationDir, driverID); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created validation suite structure at %s\n", validationDir)
	fmt.Fprintf(out, "✓ Driver ID: %s\n", driverID)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Build your driver shared library:")
	fmt.Fprintf(out, "     The validation suite expects your driver to be in: build/libadbc_driver_%s.{so,dylib,dll}.\n", driverID)
	fmt.Fprintln(out, "     You can customize this in validation/tests/conftest.py")
	fmt.Fprintf(out, "  2. Optional. Update validation/tests/%s.py with driver-specific feature and quirks\n", driverID)
	fmt.Fprintf(out, "  3. Set %s_DSN to a connection string for your test database\n", strings.ToUpper(driverID))
	fmt.Fprintln(out, "  4. Run validation suite with: adbc-validation run")
	fmt.Fprintln(out, "  5. Generate documentation with: adbc-validation docs")
	return nil
}

type templateParams struct {
	DriverID      string
	DriverIDUpper string
	ClassName     string
	DriverName    string
	TestName      string
	TestClassName string
}

func scaffold(validationDir, driverID string) error {
	params := templateParams{
		DriverID:      driverID,
		DriverIDUpper: strings.ToUpper(driverID),
		ClassName:     className(driverID),
		DriverName:    driverName(driverID),
	}

	queriesDir := filepath.Join(validationDir, "queries")
	testsDir := filepath.Join(validationDir, "tests")
	keepDirs := []string{
		filepath.Join(queriesDir, "ingest"),
		filepath.Join(queriesDir, "type", "bind"),
		filepath.Join(queriesDir, "type", "literal"),
		filepath.Join(queriesDir, "type", "select"),
	}
	for _, dir := range append(keepDirs, filepath.Join(testsDir, driverID)) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	for _, dir := range keepDirs {
		if err := os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0o644); err != nil {
			return err
		}
	}

	files := []struct {
		path     string
		template string
		params   templateParams
	}{
		{filepath.Join(validationDir, "pytest.ini"), "pytest.ini", params},
		{filepath.Join(validationDir, "README.md"), "README.md", params},
		{filepath.Join(validationDir, "driver-template.md"), "driver-template.md", params},
		{filepath.Join(testsDir, "__init__.py"), "__init__.py", params},
		{filepath.Join(testsDir, "conftest.py"), "conftest.py", params},
		{filepath.Join(testsDir, driverID+".py"), "driver.py", params},
		{filepath.Join(testsDir, "generate_documentation.py"), "generate_documentation.py", params},
		{filepath.Join(testsDir, driverID, "test_uri.py"), "driver_test_uri.py", params},
	}
	for _, name := range suiteTests {
		p := params
		p.TestName = name
		p.TestClassName = className(name)
		files = append(files, struct {
			path     string
			template string
			params   templateParams
		}{filepath.Join(testsDir, "test_"+name+".py"), "test_file.py", p})
	}

	for _, f := range files {
		content, err := renderTemplate(f.template, f.params)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.path, content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func renderTemplate(name string, params templateParams) ([]byte, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return []byte(b.String()), nil
}

// className turns a driver id into a Python class name, e.g.
// "my_driver" becomes "MyDriver".
func className(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// driverName turns a driver id into a display name, e.g. "my_driver"
// becomes "My Driver".
func driverName(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
