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

	"github.com/adbc-drivers/dev/pkg/toolchain"
)

var (
	goPrefix    string
	libclangDir string
)

var goCmd = &cobra.Command{
	Use:   "go <version> <platform>",
	Short: "Install the Go toolchain from the official release tarballs",
	Long: `Downloads go<version>.linux-<arch>.tar.gz, verifies it against the
published SHA-256, and extracts it so the toolchain lands at
<prefix>/go.

Example:
  adbc-install-toolchain go 1.25.3 linux/arm64`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst := &toolchain.GoInstaller{Prefix: goPrefix}
		return exported(inst.Install(cmd.Context(), args[0], args[1], os.Stdout))
	},
}

var rustCmd = &cobra.Command{
	Use:   "rust <version> <platform>",
	Short: "Install a pinned Rust toolchain with rustup",
	Long: `Downloads rustup-init for the platform's target triple and runs it
non-interactively with the given toolchain version as the default.

Example:
  adbc-install-toolchain rust 1.88.0 linux/amd64`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst := &toolchain.RustInstaller{}
		return exported(inst.Install(cmd.Context(), args[0], args[1], os.Stdout))
	},
}

var libclangCmd = &cobra.Command{
	Use:   "libclang <version> <platform>",
	Short: "Install a prebuilt libclang for bindgen-based builds",
	Long: `Fetches the prebuilt libclang archive for the platform and unpacks
it, replacing any previous install at the target directory.

Example:
  adbc-install-toolchain libclang 18.1.8 linux/arm64`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst := &toolchain.LibclangInstaller{Dir: libclangDir}
		return exported(inst.Install(cmd.Context(), args[0], args[1], os.Stdout))
	},
}

func init() {
	goCmd.Flags().StringVar(&goPrefix, "prefix", "/usr/local", "directory the go/ tree is extracted into")
	libclangCmd.Flags().StringVar(&libclangDir, "dir", "/opt/libclang", "directory the archive is unpacked into")

	rootCmd.AddCommand(goCmd)
	rootCmd.AddCommand(rustCmd)
	rootCmd.AddCommand(libclangCmd)
}

// exported records the resolved ARCH once an installer succeeds, so
// subsequent build steps in the image see the same token.
func exported(arch string, err error) error {
	if err != nil {
		return err
	}
	return toolchain.ExportArch(envFile, arch, os.Stdout)
}
