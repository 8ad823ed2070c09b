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

package main

import (
	"github.com/spf13/cobra"

	"github.com/adbc-drivers/dev/pkg/changelog"
)

var lintComponents []string

var lintTitleCmd = &cobra.Command{
	Use:   "lint-title <title>",
	Short: "Check a commit or PR title against the conventional format",
	Long: `Validates a title against the 'category(component)!: subject' format
the changelog is built from. Repo hooks run this on commit messages
and PR titles so releases never hit an unparseable history.

Example:
  adbc-release lint-title "feat(postgresql): support COPY ingestion"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changelog.LintTitle(args[0], lintComponents)
	},
}

func init() {
	lintTitleCmd.Flags().StringSliceVar(&lintComponents, "component", nil,
		"allowed component names (repeatable; any component is accepted when unset)")

	rootCmd.AddCommand(lintTitleCmd)
}
