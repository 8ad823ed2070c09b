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

	"github.com/adbc-drivers/dev/pkg/validation"
)

var docsPath string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate driver documentation from validation results",
	Long: `Reads validation/validation-report.xml from the last run, merges the
results with driver-template.md, and writes per-driver Markdown under
validation/docs/ summarizing what the driver supports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validation.GenerateDocs(docsPath, os.Stdout)
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsPath, "path", ".", "target directory")

	rootCmd.AddCommand(docsCmd)
}
