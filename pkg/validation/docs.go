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
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Status is a test case outcome.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TestCase is one case from a JUnit report.
type TestCase struct {
	ClassName string
	Name      string
	Status    Status
	// Message is the failure or skip reason, if any.
	Message string
}

// Area buckets a case by the suite file it came from, e.g.
// "tests.test_connection.TestConnection" is the "connection" area.
func (c TestCase) Area() string {
	name := strings.TrimPrefix(c.ClassName, "tests.")
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "test_")
}

// Report is a parsed validation-report.xml.
type Report struct {
	Cases []TestCase
}

type junitDocument struct {
	XMLName xml.Name
	Suites  []junitSuite `xml:"testsuite"`
	Cases   []junitCase  `xml:"testcase"`
}

type junitSuite struct {
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	ClassName string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	Failure   *junitOutcome `xml:"failure"`
	Error     *junitOutcome `xml:"error"`
	Skipped   *junitOutcome `xml:"skipped"`
}

type junitOutcome struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// ParseReport decodes a JUnit XML report. Both a <testsuites> wrapper
// and a bare <testsuite> root are accepted.
func ParseReport(data []byte) (*Report, error) {
	var doc junitDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JUnit report: %w", err)
	}

	raw := doc.Cases
	for _, suite := range doc.Suites {
		raw = append(raw, suite.Cases...)
	}

	report := &Report{Cases: make([]TestCase, 0, len(raw))}
	for _, c := range raw {
		tc := TestCase{ClassName: c.ClassName, Name: c.Name, Status: StatusPassed}
		switch {
		case c.Failure != nil:
			tc.Status = StatusFailed
			tc.Message = outcomeMessage(c.Failure)
		case c.Error != nil:
			tc.Status = StatusFailed
			tc.Message = outcomeMessage(c.Error)
		case c.Skipped != nil:
			tc.Status = StatusSkipped
			tc.Message = outcomeMessage(c.Skipped)
		}
		report.Cases = append(report.Cases, tc)
	}
	return report, nil
}

func outcomeMessage(o *junitOutcome) string {
	if o.Message != "" {
		return o.Message
	}
	line, _, _ := strings.Cut(strings.TrimSpace(o.Body), "\n")
	return line
}

// GenerateDocs renders the latest validation report and the driver
// template into validation/docs/<driver>.md.
func GenerateDocs(targetDir string, out io.Writer) error {
	validationDir := filepath.Join(targetDir, "validation")

	reportPath := filepath.Join(validationDir, "validation-report.xml")
	data, err := os.ReadFile(reportPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist; run the validation tests first with 'adbc-validation run'", reportPath)
	}
	if err != nil {
		return err
	}

	templatePath := filepath.Join(validationDir, "driver-template.md")
	templateData, err := os.ReadFile(templatePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist; create a driver template file there", templatePath)
	}
	if err != nil {
		return err
	}

	report, err := ParseReport(data)
	if err != nil {
		return err
	}

	docsDir := filepath.Join(validationDir, "docs")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return err
	}
	docPath := filepath.Join(docsDir, detectDriverID(validationDir)+".md")
	if err := os.WriteFile(docPath, renderDocs(templateData, report), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Documentation generated in %s\n", docsDir)
	return nil
}

// detectDriverID finds the driver-specific test directory created by
// init; the scaffold keeps exactly one.
func detectDriverID(validationDir string) string {
	entries, err := os.ReadDir(filepath.Join(validationDir, "tests"))
	if err != nil {
		return "driver"
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() && !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, ".") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "driver"
	}
	sort.Strings(names)
	return names[0]
}

type areaCount struct {
	passed  int
	failed  int
	skipped int
}

func renderDocs(template []byte, report *Report) []byte {
	counts := map[string]*areaCount{}
	var areas []string
	totals := areaCount{}
	for _, c := range report.Cases {
		area := c.Area()
		count, ok := counts[area]
		if !ok {
			count = &areaCount{}
			counts[area] = count
			areas = append(areas, area)
		}
		switch c.Status {
		case StatusFailed:
			count.failed++
			totals.failed++
		case StatusSkipped:
			count.skipped++
			totals.skipped++
		default:
			count.passed++
			totals.passed++
		}
	}
	sort.Strings(areas)

	var b bytes.Buffer
	b.Write(bytes.TrimRight(template, "\n"))
	b.WriteString("\n\n## Validation Results\n\n")
	b.WriteString("| Feature area | Passed | Failed | Skipped |\n")
	b.WriteString("| --- | ---: | ---: | ---: |\n")
	for _, area := range areas {
		c := counts[area]
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", area, c.passed, c.failed, c.skipped)
	}
	fmt.Fprintf(&b, "\n%d tests: %d passed, %d failed, %d skipped.\n",
		len(report.Cases), totals.passed, totals.failed, totals.skipped)

	var failures []TestCase
	for _, c := range report.Cases {
		if c.Status == StatusFailed {
			failures = append(failures, c)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n### Failures\n\n")
		for _, c := range failures {
			line := fmt.Sprintf("- `%s::%s`", c.ClassName, c.Name)
			if c.Message != "" {
				msg, _, _ := strings.Cut(c.Message, "\n")
				line += ": " + msg
			}
			b.WriteString(line + "\n")
		}
	}
	return b.Bytes()
}
