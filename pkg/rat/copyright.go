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
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"
	"unicode/utf8"
)

// now is stubbed in tests so the expected year is stable.
var now = time.Now

// CheckCopyright verifies that every tracked file opens with the
// current-year proprietary copyright line within its first two lines.
// Year spans like 2023-2025 are accepted as long as they end on the
// current year. It returns the number of offending files.
func CheckCopyright(root string, out io.Writer) (int, error) {
	header, err := regexp.Compile(fmt.Sprintf(
		`Copyright \(c\) ([0-9]+-)?%d Columnar Technologies Inc\. +All rights reserved\.`,
		now().Year()))
	if err != nil {
		return 0, err
	}

	excludes, err := loadPatterns(filepath.Join(root, ".rat-excludes"))
	if err != nil {
		return 0, err
	}
	files, err := loadTracked(root)
	if err != nil {
		return 0, err
	}

	violations := 0
	for _, f := range files {
		if len(f.data) == 0 {
			continue
		}
		if excludes.match(f.name) {
			continue
		}

		head := firstLines(f.data, 2)
		if !utf8.Valid(head) {
			fmt.Fprintf(out, "Cannot read %s as text, skipping\n", f.name)
			violations++
			continue
		}
		if !header.Match(head) {
			fmt.Fprintf(out, "Missing copyright header in %s\n", f.name)
			violations++
		}
	}
	return violations, nil
}
