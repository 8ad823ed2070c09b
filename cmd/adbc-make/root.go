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

var (
	verbose   bool
	directory string
)

var rootCmd = &cobra.Command{
	Use:   "adbc-make",
	Short: "Build driver shared libraries the way CI does",
	Long: `Builds a driver repository's shared library with the same flags,
containers, and portability checks CI uses, so local builds and
release artifacts cannot drift apart.

Variables are passed make-style as KEY=value arguments and can also
come from the environment; the environment wins. DRIVER is required;
IMPL_LANG selects go (default) or rust. CI=1 switches Linux builds
into the manylinux container.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() { log.SetVerbose(verbose) })

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "C", ".", "repository root to build in")
}
