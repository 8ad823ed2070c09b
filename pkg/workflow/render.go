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

package workflow

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Template delimiters are <{ }> so GitHub's own ${{ }} expressions
// pass through the templates untouched.
//
//go:embed templates/*.yaml templates/pixi.toml
var templatesFS embed.FS

// ConfigRelPath is where generate.toml lives inside a repository.
const ConfigRelPath = ".github/workflows/generate.toml"

// ErrNoConfig is returned by Generate when the repository had no
// generate.toml; a starter config has been written in its place.
var ErrNoConfig = errors.New("generate.toml not found")

// Params is what a workflow template sees. One Params is built per
// output file.
type Params struct {
	Driver      string
	Environment string
	Private     bool
	Lang        map[string]*Lang
	AWS         *AWS
	GCloud      bool
	Permissions map[string]bool

	// Secrets per context, sorted by variable name. BuildSecrets is
	// the build:release context for release workflows and build:test
	// otherwise.
	BuildSecrets    []SecretRef
	TestSecrets     []SecretRef
	ValidateSecrets []SecretRef
	AllSecrets      []SecretRef

	// ExtraDependencies for the validation environment, sorted.
	ExtraDependencies []Dependency

	// Per-file parameters.
	WorkflowName            string
	Release                 bool
	PullRequestTriggerPaths []string
}

// Dependency is one pixi dependency entry.
type Dependency struct {
	Name string
	Spec any
}

func (c *Config) params() Params {
	deps := make([]Dependency, 0, len(c.Validation.ExtraDependencies))
	for name, spec := range c.Validation.ExtraDependencies {
		deps = append(deps, Dependency{Name: name, Spec: spec})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })

	return Params{
		Driver:            c.Driver,
		Environment:       c.Environment,
		Private:           c.Private,
		Lang:              c.Lang,
		AWS:               c.AWS,
		GCloud:            c.GCloud,
		Permissions:       c.permissions,
		BuildSecrets:      c.SecretRefs("build:test"),
		TestSecrets:       c.SecretRefs("test"),
		ValidateSecrets:   c.SecretRefs("validate"),
		AllSecrets:        c.SecretRefs("all"),
		ExtraDependencies: deps,
	}
}

var funcs = template.FuncMap{
	"tomlValue": tomlValue,
	"upper":     strings.ToUpper,
}

// tomlValue renders a decoded TOML value back as an inline TOML value.
func tomlValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = tomlValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + tomlValue(v[k])
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func render(name string, params Params) ([]byte, error) {
	tmpl, err := template.New(name).Delims("<{", "}>").Funcs(funcs).ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, params); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	out := buf.Bytes()
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

// Rendered is one output file, with its path relative to the
// repository root.
type Rendered struct {
	Path    string
	Content []byte
}

// Render produces every output file for a config, in a stable order.
func Render(cfg *Config) ([]Rendered, error) {
	var out []Rendered
	add := func(path, tmplName string, params Params) error {
		content, err := render(tmplName, params)
		if err != nil {
			return err
		}
		out = append(out, Rendered{Path: path, Content: content})
		return nil
	}

	if cfg.LangEnabled("go") {
		params := cfg.params()
		params.WorkflowName = "Test"
		params.Release = false
		params.PullRequestTriggerPaths = []string{".github/workflows/go_test.yaml"}
		if err := add(".github/workflows/go_test.yaml", "test.yaml", params); err != nil {
			return nil, err
		}

		params = cfg.params()
		params.WorkflowName = "Release"
		params.Release = true
		params.BuildSecrets = cfg.SecretRefs("build:release")
		params.PullRequestTriggerPaths = []string{".github/workflows/go_release.yaml"}
		if err := add(".github/workflows/go_release.yaml", "test.yaml", params); err != nil {
			return nil, err
		}
	}

	for _, dev := range []string{"dev.yaml", "dev_issues.yaml", "dev_pr.yaml"} {
		if err := add(".github/workflows/"+dev, dev, cfg.params()); err != nil {
			return nil, err
		}
	}

	for _, lang := range cfg.EnabledLangs() {
		if err := add(filepath.Join(lang, "pixi.toml"), "pixi.toml", cfg.params()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Result reports what Generate did.
type Result struct {
	// Wrote lists the files written, or in check mode the files that
	// are already up to date.
	Wrote []string
	// Drift lists out-of-date files found in check mode.
	Drift []string
	// MissingLicense lists enabled languages lacking a license.tpl.
	MissingLicense []string
}

// OK reports whether the run found no problems.
func (r *Result) OK() bool {
	return len(r.Drift) == 0 && len(r.MissingLicense) == 0
}

// Generate renders the workflows for the repository at root and writes
// them in place. When the repository has no generate.toml a commented
// starter config is written and ErrNoConfig returned. In check mode
// nothing is written; out receives a diff for each file that differs
// from what would be generated.
func Generate(root string, check bool, out io.Writer) (*Result, error) {
	configPath := filepath.Join(root, filepath.FromSlash(ConfigRelPath))
	cfg, err := Load(configPath)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, "%s not found.\n", configPath)
		if mkErr := os.MkdirAll(filepath.Dir(configPath), 0o755); mkErr != nil {
			return nil, mkErr
		}
		if wrErr := os.WriteFile(configPath, []byte(DefaultTOML), 0o644); wrErr != nil {
			return nil, wrErr
		}
		fmt.Fprintln(out, "Wrote out defaults, please fill it in.")
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, err
	}

	files, err := Render(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f.Path))
		if check {
			existing, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				result.Drift = append(result.Drift, f.Path)
				fmt.Fprintf(out, "%s is missing\n", f.Path)
				continue
			}
			if err != nil {
				return nil, err
			}
			if !bytes.Equal(existing, f.Content) {
				result.Drift = append(result.Drift, f.Path)
				fmt.Fprintf(out, "%s is out of date:\n%s", f.Path, diff(string(existing), string(f.Content)))
				continue
			}
			result.Wrote = append(result.Wrote, f.Path)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return nil, err
		}
		result.Wrote = append(result.Wrote, f.Path)
		fmt.Fprintln(out, "Wrote", path)
	}

	for _, lang := range cfg.EnabledLangs() {
		licenseTemplate := filepath.Join(root, lang, "license.tpl")
		if _, err := os.Stat(licenseTemplate); err != nil {
			result.MissingLicense = append(result.MissingLicense, lang)
			fmt.Fprintln(out, "Missing", licenseTemplate)
		}
	}

	return result, nil
}

// diff renders a readable diff between the on-disk and generated
// contents.
func diff(existing, generated string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(existing, generated, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("- " + strings.ReplaceAll(text, "\n", "\n- ") + "\n")
		case diffmatchpatch.DiffInsert:
			b.WriteString("+ " + strings.ReplaceAll(text, "\n", "\n+ ") + "\n")
		case diffmatchpatch.DiffEqual:
			lines := strings.Split(text, "\n")
			if len(lines) > 4 {
				b.WriteString("  " + lines[0] + "\n")
				b.WriteString("  ...\n")
				b.WriteString("  " + lines[len(lines)-1] + "\n")
			} else {
				for _, line := range lines {
					b.WriteString("  " + line + "\n")
				}
			}
		}
	}
	return b.String()
}
