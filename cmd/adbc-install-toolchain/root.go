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
	"github.com/adbc-drivers/dev/pkg/toolchain"
)

var (
	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "adbc-install-toolchain",
	Short: "Install driver build toolchains into container images",
	Long: `Installs the cross-compilation toolchains the driver build images
need. Each subcommand takes a toolchain version and a Docker-style
target platform (linux/amd64 or linux/arm64) and, on success, writes
the resolved ARCH token to an env file so later build steps agree on
the architecture.

Unsupported platforms fail before anything is downloaded. Re-running
an installer replaces the previous install instead of accumulating
state, so image rebuilds converge.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() { log.SetVerbose(verbose) })

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", toolchain.DefaultEnvFile,
		"file the ARCH export line is written to")
}
