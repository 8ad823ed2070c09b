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

	"github.com/adbc-drivers/dev/pkg/rat"
)

var copyrightCmd = &cobra.Command{
	Use:   "copyright <root>",
	Short: "Check every tracked file for the current-year copyright header",
	Long: `Verifies the first two lines of every tracked file carry the
current-year copyright line. Meant for pre-commit hooks: fast, no
downloads, exits non-zero when any file is missing the header.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		violations, err := rat.CheckCopyright(args[0], os.Stdout)
		if err != nil {
			return err
		}
		if violations > 0 {
			return exitError(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyrightCmd)
}
