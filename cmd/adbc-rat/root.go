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
	Use:   "adbc-rat",
	Short: "Audit repository license hygiene",
	Long: `License audits over the tracked tree, run from repo hooks and CI.
Exclusions are read from .rat-excludes at the repository root;
.rat-apache lists the files imported from Apache repositories that
must carry the provenance header.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() { log.SetVerbose(verbose) })

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
