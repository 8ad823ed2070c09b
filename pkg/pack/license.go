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

package pack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/adbc-drivers/dev/internal/run"
)

// LicenseReport collects the licenses of the driver module's
// dependencies by rendering the given go-licenses template. The
// driver's own module is excluded, its license ships separately.
func LicenseReport(ctx context.Context, dir, template string) ([]byte, error) {
	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return nil, err
	}
	module := modfile.ModulePath(gomod)
	if module == "" {
		return nil, errors.New("could not determine module name to ignore")
	}
	abs, err := filepath.Abs(template)
	if err != nil {
		return nil, err
	}
	report, err := run.RawOutput(ctx, "go-licenses",
		[]string{"report", "./...", "--ignore", module, "--template", abs},
		run.Options{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("failed to generate license: %w", err)
	}
	return report, nil
}
