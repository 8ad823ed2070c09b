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

	"github.com/adbc-drivers/dev/internal/run"
	"github.com/adbc-drivers/dev/pkg/validation"
)

var runPath string

var runCmd = &cobra.Command{
	Use:   "run [-- pytest args...]",
	Short: "Run the validation test suite",
	Long: `Runs pytest over the validation suite, writing the JUnit report the
docs command consumes. Extra arguments pass through to pytest, and the
exit status mirrors pytest's.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := validation.Run(cmd.Context(), runPath, args)
		if code := run.ExitCode(err); code > 0 {
			// pytest already printed its failures
			return exitError(code)
		}
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&runPath, "path", ".", "target directory")

	rootCmd.AddCommand(runCmd)
}
