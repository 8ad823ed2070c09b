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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adbc-drivers/dev/pkg/changelog"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog <root> <tag>",
	Short: "Print the release notes for a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, notes, err := changelog.Notes(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println("#", title)
		fmt.Println()
		fmt.Println(notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)
}
