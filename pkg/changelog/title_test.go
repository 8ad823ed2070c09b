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

package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTitle tests the conventional commit title grammar
func TestParseTitle(t *testing.T) {
	tests := []struct {
		title string
		want  *Title
	}{
		{
			title: "feat: add bulk ingestion",
			want:  &Title{Category: "feat", Subject: "add bulk ingestion"},
		},
		{
			title: "fix(driver): handle NULL timestamps",
			want:  &Title{Category: "fix", Component: "driver", Subject: "handle NULL timestamps"},
		},
		{
			title: "feat!: change the manifest layout",
			want:  &Title{Category: "feat", Breaking: true, Subject: "change the manifest layout"},
		},
		{
			title: "refactor(validation)!: split the suite",
			want:  &Title{Category: "refactor", Component: "validation", Breaking: true, Subject: "split the suite"},
		},
		{
			title: "revert: feat: add bulk ingestion",
			want:  &Title{Category: "revert", Subject: "feat: add bulk ingestion"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			parsed, ok := ParseTitle(tt.title)
			require.True(t, ok)
			assert.Equal(t, tt.want, parsed)
		})
	}
}

// TestParseTitleRejects tests titles outside the format
func TestParseTitleRejects(t *testing.T) {
	titles := []string{
		"",
		"add bulk ingestion",
		"feature: wrong category",
		"Feat: uppercase category",
		"feat:missing space",
		"feat: ",
		"feat(): empty component",
		"(driver): no category",
		"feat(driver) missing colon",
	}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			_, ok := ParseTitle(title)
			assert.False(t, ok)
		})
	}
}

func TestLintTitle(t *testing.T) {
	assert.NoError(t, LintTitle("feat: add things", nil))
	assert.NoError(t, LintTitle("fix(go): repair things", []string{"go", "rust"}))
	// An unrestricted component list accepts anything.
	assert.NoError(t, LintTitle("fix(whatever): repair things", nil))

	err := LintTitle("wat: unknown category", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	err = LintTitle("fix(python): repair things", []string{"go", "rust"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown component "python"`)
}
