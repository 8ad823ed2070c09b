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

package rat

import (
	"archive/tar"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"github.com/adbc-drivers/dev/internal/run"
)

// Version is the pinned Apache RAT release.
const Version = "0.16.1"

// DefaultRATBaseURL hosts the RAT jars.
const DefaultRATBaseURL = "https://repo1.maven.org/maven2/org/apache/rat/apache-rat"

var (
	copyrightRe = regexp.MustCompile(`Copyright \(c\) [0-9]{4} ADBC Drivers Contributors`)
	apacheRe    = regexp.MustCompile(`This file has been modified from its original version, which is under the Apache License: Licensed to the Apache Software Foundation`)
	sepRe       = regexp.MustCompile(`[^a-zA-Z0-9,:()]+`)
)

// Auditor runs the full RAT license check.
type Auditor struct {
	// CacheDir overrides where the RAT jar is cached; empty means a
	// directory under the user cache dir.
	CacheDir string
	// BaseURL is the jar host. Defaults to DefaultRATBaseURL.
	BaseURL string
	// Client is the HTTP client; nil means http.DefaultClient.
	Client *http.Client
	// RunRAT invokes RAT on an archive and returns the XML report.
	// Defaults to java -jar. Swapped in tests.
	RunRAT func(ctx context.Context, jar, archive string) ([]byte, error)
}

// Check audits the tracked tree under root: RAT flags files with
// missing or unapproved licenses, then the contributor copyright line
// and the Apache provenance header are enforced over the first 20
// lines of each file. It returns the total violation count, which the
// command uses as its exit status.
func (a *Auditor) Check(ctx context.Context, root string, out io.Writer) (int, error) {
	fmt.Fprintln(out, "Checking licenses for", root)

	jar, err := a.ensureJar(ctx, out)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(out, "Using Apache RAT:", jar)

	excludes, err := loadPatterns(filepath.Join(root, ".rat-excludes"))
	if err != nil {
		return 0, err
	}
	needsApache, err := loadNameSet(filepath.Join(root, ".rat-apache"))
	if err != nil {
		return 0, err
	}
	files, err := loadTracked(root)
	if err != nil {
		return 0, err
	}

	// RAT does not respect .gitignore, so it scans a tarball of the
	// tracked tree rather than the directory itself.
	scratch, err := os.MkdirTemp("", "adbc-rat-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(scratch)

	archive := filepath.Join(scratch, "rat.tar.gz")
	if err := writeTrackedArchive(archive, files); err != nil {
		return 0, err
	}

	runRAT := a.RunRAT
	if runRAT == nil {
		runRAT = func(ctx context.Context, jar, archive string) ([]byte, error) {
			return run.RawOutput(ctx, "java", []string{"-jar", jar, archive, "-x"}, run.Options{})
		}
	}
	report, err := runRAT(ctx, jar, archive)
	if err != nil {
		return 0, fmt.Errorf("running RAT: %w", err)
	}

	violations, err := countUnapproved(report, excludes, out)
	if err != nil {
		return 0, err
	}
	violations += checkHeaders(files, excludes, needsApache, out)
	return violations, nil
}

// ensureJar downloads the pinned RAT jar into the cache directory
// unless a previous run already has.
func (a *Auditor) ensureJar(ctx context.Context, out io.Writer) (string, error) {
	cacheDir := a.CacheDir
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = filepath.Join(base, "adbc-drivers-dev")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}

	jar := filepath.Join(cacheDir, fmt.Sprintf("apache-rat-%s.jar", Version))
	if _, err := os.Stat(jar); err == nil {
		return jar, nil
	}

	baseURL := a.BaseURL
	if baseURL == "" {
		baseURL = DefaultRATBaseURL
	}
	url := fmt.Sprintf("%s/%s/apache-rat-%s.jar", baseURL, Version, Version)
	fmt.Fprintln(out, "Downloading", url)
	if err := downloadFile(ctx, a.Client, url, jar); err != nil {
		return "", err
	}
	return jar, nil
}

func downloadFile(ctx context.Context, client *http.Client, url, dest string) (err error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	return nil
}

// writeTrackedArchive tars the tracked files the way git archive
// would, so RAT scans exactly the would-be-committed tree.
func writeTrackedArchive(dest string, files []trackedFile) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, file := range files {
		hdr := &tar.Header{
			Name:    file.name,
			Mode:    0o644,
			Size:    int64(len(file.data)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(file.data); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

type ratReport struct {
	Resources []ratResource `xml:"resource"`
}

type ratResource struct {
	Name      string        `xml:"name,attr"`
	Approvals []ratApproval `xml:"license-approval"`
}

type ratApproval struct {
	Name string `xml:"name,attr"`
}

// countUnapproved parses RAT's XML report and counts resources whose
// license approval is not "true". Resources without an approval
// element, like directories, are skipped.
func countUnapproved(report []byte, excludes patternList, out io.Writer) (int, error) {
	var parsed ratReport
	if err := xml.Unmarshal(report, &parsed); err != nil {
		return 0, fmt.Errorf("parsing RAT report: %w", err)
	}

	unapproved := 0
	for _, res := range parsed.Resources {
		if len(res.Approvals) == 0 {
			continue
		}
		if res.Approvals[0].Name == "true" {
			continue
		}
		if excludes.match(res.Name) {
			continue
		}
		if unapproved == 0 {
			fmt.Fprintln(out, "Files without licenses or with unapproved licenses found:")
		}
		unapproved++
		fmt.Fprintln(out, "-", res.Name)
	}
	return unapproved, nil
}

// checkHeaders enforces the contributor copyright line on every file
// and the Apache provenance header exactly on the files listed in
// .rat-apache. Matching is punctuation-insensitive: separator runs
// collapse to a single space first, so comment markers do not matter.
func checkHeaders(files []trackedFile, excludes patternList, needsApache map[string]bool, out io.Writer) int {
	var missingCopyright, missingApache, strayApache []string
	for _, f := range files {
		head := firstLines(f.data, 20)
		content := ""
		if utf8.Valid(head) {
			content = sepRe.ReplaceAllString(string(head), " ")
		}
		// binary files keep empty content and fail the copyright
		// check unless excluded

		if !copyrightRe.MatchString(content) &&
			!strings.HasSuffix(f.name, "LICENSE.txt") &&
			!strings.HasSuffix(f.name, "NOTICE.txt") &&
			!excludes.match(f.name) {
			missingCopyright = append(missingCopyright, f.name)
		}

		if needsApache[f.name] {
			if !apacheRe.MatchString(content) {
				missingApache = append(missingApache, f.name)
			}
		} else if apacheRe.MatchString(content) {
			strayApache = append(strayApache, f.name)
		}
	}

	report := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		fmt.Fprintln(out, title)
		for _, name := range names {
			fmt.Fprintln(out, "-", name)
		}
	}
	report("Files missing ADBC Drivers Contributors copyright header:", missingCopyright)
	report("Files missing 'This file has been modified' header:", missingApache)
	report("Files that should not have 'This file has been modified' header:", strayApache)

	return len(missingCopyright) + len(missingApache) + len(strayApache)
}
