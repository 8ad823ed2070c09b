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

	"github.com/adbc-drivers/dev/internal/log"
	"github.com/adbc-drivers/dev/internal/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "adbc-gen-workflow",
	Short: "Generate GitHub CI workflows for ADBC driver repositories",
	Long: `Renders the common CI workflows (build, test, release, dev checks)
for a driver repository from its .github/workflows/generate.toml, so
every driver repo carries the same pipelines without copy-paste
drift.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() { log.SetVerbose(verbose) })

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
