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

	"github.com/adbc-drivers/dev/pkg/validation"
)

var (
	initPath     string
	initDriverID string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the validation folder structure",
	Long: `Creates validation/ under the target directory: the pytest suite,
query fixtures, and documentation templates, parameterized with the
driver id. The driver id defaults to the repository name and is
prompted for when running interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := initDriverID
		if id == "" {
			id = validation.DefaultDriverID(initPath)
			if interactive() {
				var err error
				id, err = validation.PromptDriverID(os.Stdin, os.Stdout, id)
				if err != nil {
					return err
				}
			}
		}
		if !validation.ValidDriverID(id) {
			return fmt.Errorf("invalid driver id %q: use lowercase letters and underscores (not at ends)", id)
		}
		return validation.Init(initPath, id, os.Stdout)
	},
}

// interactive reports whether stdin is a terminal, so scripted runs
// never block on the driver id prompt.
func interactive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", ".", "target directory")
	initCmd.Flags().StringVar(&initDriverID, "driver-id", "", "driver id (default: derived from the repository name)")

	rootCmd.AddCommand(initCmd)
}
