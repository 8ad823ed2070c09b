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

	"github.com/adbc-drivers/dev/pkg/driverbuild"
)

var checkCmd = &cobra.Command{
	Use:   "check [VAR=value...]",
	Short: "Check the built library's portability",
	Long: `Inspects the built shared library: only Adbc entry points may be
exported, and on Linux the glibc/glibcxx version requirements must
stay within the manylinux2014 baseline so the binary runs on older
distributions. On macOS the deployment target is checked instead.

Example:
  adbc-make check DRIVER=postgresql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(args)
		if err != nil {
			return err
		}
		return driverbuild.Check(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
