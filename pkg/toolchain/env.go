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

package toolchain

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultEnvFile is where the resolved architecture token is recorded
// for later container build steps.
const DefaultEnvFile = "/etc/profile.d/adbc-arch.sh"

// ExportArch writes an export line for the resolved architecture
// token and echoes it, so later build steps in the same image see the
// same ARCH the installer used.
func ExportArch(envFile, arch string, out io.Writer) error {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	line := fmt.Sprintf("export ARCH=%s\n", arch)
	if err := os.MkdirAll(filepath.Dir(envFile), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(envFile, []byte(line), 0o644); err != nil {
		return err
	}
	fmt.Fprint(out, line)
	return nil
}
