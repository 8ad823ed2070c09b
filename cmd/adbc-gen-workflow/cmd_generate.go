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
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/adbc-drivers/dev/pkg/workflow"
)

var checkOnly bool

var generateCmd = &cobra.Command{
	Use:   "generate <repository>",
	Short: "Render the CI workflows for a driver repository",
	Long: `Renders the workflow files for the repository from its
.github/workflows/generate.toml and writes them in place. When the
config is missing a commented starter config is written instead.

With --check nothing is written: the rendered output is compared to
the files on disk and drift fails the command, which is how CI keeps
generated workflows honest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := workflow.Generate(args[0], checkOnly, os.Stdout)
		if errors.Is(err, workflow.ErrNoConfig) {
			return exitError(1)
		}
		if err != nil {
			return err
		}
		if !result.OK() {
			return exitError(1)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&checkOnly, "check", false, "verify the workflows on disk are up to date instead of writing")

	rootCmd.AddCommand(generateCmd)
}
