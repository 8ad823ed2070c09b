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

	"github.com/adbc-drivers/dev/internal/log"
	"github.com/adbc-drivers/dev/internal/version"
	"github.com/adbc-drivers/dev/pkg/pack"
)

var opts pack.Options

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "adbc-package [flags] <input-dir>...",
	Short: "Package CI build artifacts into distributable drivers",
	Long: `Turns the per-platform CI artifact directories into driver packages
and a bucket index. Input directories must follow the CI artifact
naming convention drivers-<platform>-<arch>, e.g. drivers-linux-amd64,
which is how the platform and architecture of each library are known.

Each package bundles the shared library, a completed MANIFEST, the
generated LICENSE, and NOTICE.txt when present.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.Inputs = args
		return pack.Generate(cmd.Context(), opts, os.Stdout)
	},
}

func init() {
	cobra.OnInitialize(func() { log.SetVerbose(verbose) })

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().StringVarP(&opts.Output, "output", "o", "", "directory to write generated packages to")
	rootCmd.Flags().StringVar(&opts.Name, "name", "", "the driver name")
	rootCmd.Flags().StringVar(&opts.Root, "root", "", "path to the driver in version control (to infer the version)")
	rootCmd.Flags().BoolVar(&opts.Release, "release", false, "this is a release (be more strict)")
	rootCmd.Flags().StringVar(&opts.ManifestTemplate, "manifest-template", "", "the template manifest.toml")

	for _, flag := range []string{"output", "name", "root", "manifest-template"} {
		cobra.CheckErr(rootCmd.MarkFlagRequired(flag))
	}
}
