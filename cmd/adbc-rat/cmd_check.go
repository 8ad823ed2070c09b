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

var ratCheckCmd = &cobra.Command{
	Use:   "check <root>",
	Short: "Run the full Apache RAT license audit",
	Long: `Runs Apache RAT over a tarball of the tracked tree and enforces the
contributor copyright and Apache provenance headers on top. The jar is
downloaded once into the user cache directory. The exit status is the
number of violations found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		auditor := &rat.Auditor{}
		violations, err := auditor.Check(cmd.Context(), args[0], os.Stdout)
		if err != nil {
			return err
		}
		if violations > 0 {
			return exitError(violations)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratCheckCmd)
}
