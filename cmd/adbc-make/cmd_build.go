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
	"github.com/adbc-drivers/dev/pkg/driverbuild"
)

var buildCmd = &cobra.Command{
	Use:   "build [VAR=value...]",
	Short: "Build the driver shared library",
	Long: `Builds the driver's shared library into build/. The build is skipped
when the library is already newer than every source file.

Examples:
  adbc-make build DRIVER=postgresql
  adbc-make build DRIVER=mssql IMPL_LANG=rust FEATURES=tls
  CI=1 adbc-make build DRIVER=postgresql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(args)
		if err != nil {
			return err
		}
		return driverbuild.Build(cmd.Context(), cfg)
	},
}

func resolveConfig(args []string) (*driverbuild.Config, error) {
	cli, err := driverbuild.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	cfg, err := driverbuild.Resolve(driverbuild.NewVars(cli), directory)
	if err != nil {
		return nil, err
	}
	run.Echo = cfg.Verbose || verbose
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
