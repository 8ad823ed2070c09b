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
	"os"

	"github.com/spf13/cobra"

	"github.com/adbc-drivers/dev/pkg/changelog"
)

var dryRun bool

var createCmd = &cobra.Command{
	Use:   "create <root> <tag>",
	Short: "Create the draft GitHub release for a tag",
	Long: `Renders the changelog for the tag and creates a draft GitHub release
with gh. The tag must already exist and be pushed; --verify-tag makes
gh refuse otherwise.

Examples:
  adbc-release create . v1.2.0
  adbc-release create . postgresql/v0.3.1 --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changelog.Release(cmd.Context(), args[0], args[1], dryRun, os.Stdout)
	},
}

func init() {
	createCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the release command instead of running it")

	rootCmd.AddCommand(createCmd)
}
