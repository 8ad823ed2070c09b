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

package workflow

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/adbc-drivers/dev/internal/gitutil"
)

// actionRe matches a pinned action reference with its optional tag
// comment, e.g. "uses: actions/checkout@<sha>  # v4.2.2".
var actionRe = regexp.MustCompile(`uses: ([\w\-/]+)@([\w\-.]+)(\W*#.*)?`)

// TagLister lists the tags a remote repository advertises, mapping tag
// name to commit hash. Swapped out in tests.
type TagLister func(ctx context.Context, url string) (map[string]string, error)

// Pin is the newest release of an action: its tag and the commit the
// tag points at.
type Pin struct {
	Tag string
	SHA string
}

// Updater rewrites the action pins in the workflow template sources to
// the latest released versions.
type Updater struct {
	// List fetches remote tags; defaults to go-git's advertised refs.
	List TagLister

	out   io.Writer
	cache map[string]Pin
}

// NewUpdater returns an Updater reporting progress to out.
func NewUpdater(out io.Writer) *Updater {
	return &Updater{
		List:  gitutil.RemoteTags,
		out:   out,
		cache: map[string]Pin{},
	}
}

// Latest resolves the newest released version of an action. Tags that
// are not releases are skipped: "master", anything with "-node" in it,
// and "testEnableForGHES" (aws-actions and friends have odd tags).
func (u *Updater) Latest(ctx context.Context, action string) (Pin, error) {
	if pin, ok := u.cache[action]; ok {
		return pin, nil
	}
	tags, err := u.List(ctx, "https://github.com/"+action)
	if err != nil {
		return Pin{}, fmt.Errorf("%s: %w", action, err)
	}

	var best Pin
	var bestVersion string
	for tag, sha := range tags {
		if tag == "master" || strings.Contains(tag, "-node") || tag == "testEnableForGHES" {
			continue
		}
		v := tag
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) {
			continue
		}
		if bestVersion == "" || semver.Compare(v, bestVersion) > 0 {
			best = Pin{Tag: tag, SHA: sha}
			bestVersion = v
		}
	}
	if bestVersion == "" {
		return Pin{}, fmt.Errorf("%s: no release tags found", action)
	}
	u.cache[action] = best
	return best, nil
}

// UpdateDir rewrites every .yaml template under dir in place.
func (u *Updater) UpdateDir(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		return u.UpdateFile(ctx, path)
	})
}

// UpdateFile rewrites the action pins in a single template.
func (u *Updater) UpdateFile(ctx context.Context, path string) error {
	fmt.Fprintln(u.out, "Updating", path)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var firstErr error
	updated := actionRe.ReplaceAllStringFunc(string(content), func(match string) string {
		if firstErr != nil {
			return match
		}
		sub := actionRe.FindStringSubmatch(match)
		action, current := sub[1], sub[2]
		latest, err := u.Latest(ctx, action)
		if err != nil {
			firstErr = err
			return match
		}
		if current == latest.SHA {
			fmt.Fprintf(u.out, "  %s already at %s (%s)\n", action, latest.SHA, latest.Tag)
		} else {
			fmt.Fprintf(u.out, "  %s updated from %s to %s (%s)\n", action, current, latest.SHA, latest.Tag)
		}
		return fmt.Sprintf("uses: %s@%s  # %s", action, latest.SHA, latest.Tag)
	})
	if firstErr != nil {
		return firstErr
	}

	return os.WriteFile(path, []byte(updated), 0o644)
}
