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
	"os"

	"github.com/spf13/cobra"

	"github.com/adbc-drivers/dev/pkg/workflow"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "generate-schema",
	Short: "Emit the JSON Schema for generate.toml",
	Long: `Emits the JSON Schema describing generate.toml, for editor
integrations and TOML linters like tombi. Driver repos reference it
with a '#:schema' directive at the top of their config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := workflow.SchemaJSON()
		if err != nil {
			return err
		}
		if schemaOutput == "" {
			fmt.Print(string(data))
			return nil
		}
		return os.WriteFile(schemaOutput, data, 0o644)
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "write the schema to a file instead of stdout")

	rootCmd.AddCommand(schemaCmd)
}
