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

package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adbc-drivers/dev/internal/run"
)

// Run executes the validation suite under targetDir with pytest,
// passing extra arguments through. The returned error carries pytest's
// exit status when tests fail.
func Run(ctx context.Context, targetDir string, pytestArgs []string) error {
	validationDir := filepath.Join(targetDir, "validation")
	if _, err := os.Stat(validationDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist; run 'adbc-validation init' first", validationDir)
		}
		return err
	}

	args := []string{"-vvs", "--junit-xml=validation-report.xml", "-rfEsxX", "tests"}
	args = append(args, pytestArgs...)
	err := run.Command(ctx, "pytest", args, run.Options{Dir: validationDir})
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("pytest not found; install it with 'pip install pytest' or use 'pixi run validate'")
	}
	return err
}
