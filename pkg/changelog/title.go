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

// Package changelog turns the git history of a driver repository into
// release notes, following the conventional commit format the repo
// hooks enforce.
package changelog

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Categories are the commit types accepted in titles. The first four
// get their own changelog section.
var Categories = []string{
	"feat", "fix", "perf", "docs",
	"chore", "ci", "refactor", "test", "build", "revert",
}

// titleRe splits a conventional commit title into its parts. Category
// membership and the subject are checked separately for better
// diagnostics.
var titleRe = regexp.MustCompile(`^([a-z]+)(?:\(([^()]+)\))?(!)?: (.*)$`)

// Title is a parsed conventional commit title.
type Title struct {
	Category  string
	Component string
	// Breaking is set by the ! marker before the colon.
	Breaking bool
	Subject  string
}

// ParseTitle parses a commit or PR title of the form
// "category(component)!: subject". The component and the breaking
// marker are optional.
func ParseTitle(title string) (*Title, bool) {
	m := titleRe.FindStringSubmatch(title)
	if m == nil {
		return nil, false
	}
	parsed := &Title{
		Category:  m[1],
		Component: m[2],
		Breaking:  m[3] == "!",
		Subject:   m[4],
	}
	if !slices.Contains(Categories, parsed.Category) {
		return nil, false
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return nil, false
	}
	return parsed, true
}

// LintTitle checks a title against the conventional commit format.
// When components is non-empty the component must be one of them.
func LintTitle(title string, components []string) error {
	parsed, ok := ParseTitle(title)
	if !ok {
		return fmt.Errorf("title %q does not match the format 'category(component)!: subject' with category one of %s",
			title, strings.Join(Categories, ", "))
	}
	if len(components) > 0 && parsed.Component != "" && !slices.Contains(components, parsed.Component) {
		return fmt.Errorf("title %q uses unknown component %q (known: %s)",
			title, parsed.Component, strings.Join(components, ", "))
	}
	return nil
}
