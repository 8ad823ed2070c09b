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

	"github.com/adbc-drivers/dev/pkg/workflow"
)

var updateActionsCmd = &cobra.Command{
	Use:   "update-actions [template-dir]",
	Short: "Bump the pinned GitHub Actions in the workflow templates",
	Long: `Scans the workflow template sources for 'uses: owner/repo@sha  # tag'
pins, looks up each action's newest release tag, and rewrites the pins
to the tag's commit. Run from a checkout of this repository; the
updated templates ship with the next tool release.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "pkg/workflow/templates"
		if len(args) == 1 {
			dir = args[0]
		}
		return workflow.NewUpdater(os.Stdout).UpdateDir(cmd.Context(), dir)
	},
}

func init() {
	rootCmd.AddCommand(updateActionsCmd)
}
