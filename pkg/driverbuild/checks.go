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

package driverbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/adbc-drivers/dev/internal/run"
)

// Portability ceilings for Linux builds, matching manylinux2014.
// https://peps.python.org/pep-0599/#the-manylinux2014-policy
const (
	maxGlibc   = "2.17"
	maxGlibcxx = "3.14.19"
)

// Check verifies the built driver library: only ADBC entry points may
// be exported, and the library must not require a newer runtime than
// the oldest supported platform provides.
func Check(ctx context.Context, cfg *Config) error {
	target, err := Target(cfg.Driver)
	if err != nil {
		return err
	}
	binary := filepath.Join(cfg.RepoRoot, "build", target)
	if _, err := os.Stat(binary); err != nil {
		return fmt.Errorf("%s does not exist, build the driver first", binary)
	}
	return CheckBinary(ctx, binary)
}

// CheckBinary inspects one shared library. Platforms without a
// checker pass trivially.
func CheckBinary(ctx context.Context, binary string) error {
	switch runtime.GOOS {
	case "linux":
		out, err := run.Output(ctx, "nm", []string{"--demangle", "--dynamic", binary}, run.Options{})
		if err != nil {
			return err
		}
		return checkELF(binary, strings.Split(out, "\n"))
	case "darwin":
		out, err := run.Output(ctx, "otool", []string{"-l", binary}, run.Options{})
		if err != nil {
			return err
		}
		return checkMachO(binary, strings.Split(out, "\n"))
	}
	return nil
}

// checkELF scans nm output for stray exports and for symbol versions
// newer than the manylinux2014 baseline.
func checkELF(binary string, symbols []string) error {
	var bad []string
	for _, symbol := range symbols {
		if !strings.Contains(symbol, " T ") {
			continue
		}
		_, name, _ := strings.Cut(symbol, " T ")
		if !strings.HasPrefix(name, "Adbc") {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		head := bad
		if len(head) > 3 {
			head = head[:3]
		}
		return fmt.Errorf("%s... (%d symbols total) should not be exported from %s",
			strings.Join(head, ", "), len(bad), binary)
	}

	for _, symbol := range symbols {
		if i := strings.Index(symbol, "@GLIBC_"); i >= 0 {
			version := symbol[i+len("@GLIBC_"):]
			if versionAbove(version, maxGlibc) {
				return fmt.Errorf("%s requires too new a glibc (max %s)", symbol, maxGlibc)
			}
		} else if i := strings.Index(symbol, "@GLIBCXX_"); i >= 0 {
			version := symbol[i+len("@GLIBCXX_"):]
			if versionAbove(version, maxGlibcxx) {
				return fmt.Errorf("%s requires too new a glibcxx (max %s)", symbol, maxGlibcxx)
			}
		}
	}
	return nil
}

// checkMachO reads the minos load command from otool output and
// compares it against the deployment target.
func checkMachO(binary string, lines []string) error {
	minos := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "minos") {
			continue
		}
		_, minos, _ = strings.Cut(line, " ")
		break
	}
	if minos == "" {
		return errors.New("could not determine minimum macOS version")
	}
	if versionAbove(minos, macOSTarget) {
		return fmt.Errorf("%s requires macOS %s but %s was expected at most", binary, minos, macOSTarget)
	}
	return nil
}

func versionAbove(version, ceiling string) bool {
	return semver.Compare("v"+version, "v"+ceiling) > 0
}
