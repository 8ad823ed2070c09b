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

// Package workflow generates the GitHub CI workflows for a driver
// repository from its checked-in generate.toml.
package workflow

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Contexts enumerates the workflow contexts a secret can be scoped to.
// The synthetic "all" context is computed, never configured.
var Contexts = []string{"build:test", "build:release", "test", "validate"}

// Languages the generator knows how to emit workflows for.
var Languages = []string{"go", "rust"}

// SecretConfig scopes one workflow environment variable to a GitHub
// secret and the contexts it may appear in.
type SecretConfig struct {
	// Secret is the name of the GitHub secret backing this variable.
	Secret string
	// Contexts lists where the variable is exposed; defaults to all of
	// Contexts.
	Contexts []string
}

// LangBuild configures how a language's driver build is invoked.
type LangBuild struct {
	// AdditionalMakeArgs are extra arguments for adbc-make.
	AdditionalMakeArgs []string
	// LangTools installs extra language toolchains into the build job.
	LangTools []string
}

// Lang configures one enabled language. A nil *Lang in Config.Lang
// means the language was explicitly disabled.
type Lang struct {
	Build LangBuild
	// SkipValidate disables the validation suite job. Meant to be
	// temporary while a driver is being brought up.
	SkipValidate bool
}

// AWS enables OIDC-based AWS authentication in the workflows.
type AWS struct {
	Region string
}

// Validation configures the validation workflow.
type Validation struct {
	// ExtraDependencies are additional pixi dependencies for the
	// validation environment, as name to version-spec pairs.
	ExtraDependencies map[string]any
}

// Config is the decoded generate.toml for one driver repository.
// Unknown keys anywhere in the document are rejected.
type Config struct {
	// Driver is the lowercase driver name, e.g. "postgresql".
	Driver string
	// Environment optionally names a GitHub Actions Environment that
	// gates the secret-bearing jobs.
	Environment string
	// Private marks drivers whose repos need an access token to clone.
	Private bool
	// Lang maps language name to its configuration; a nil value means
	// disabled.
	Lang map[string]*Lang
	// Secrets maps workflow environment variables to GitHub secrets.
	Secrets map[string]SecretConfig
	// AWS is non-nil when AWS authentication is enabled.
	AWS *AWS
	// GCloud enables Google Cloud authentication.
	GCloud bool
	// Validation configures the validation suite workflow.
	Validation Validation

	secrets     map[string]map[string]string
	permissions map[string]bool
}

// DefaultTOML is the starter generate.toml written when a repository
// has none yet.
const DefaultTOML = `#:schema https://adbc-drivers.org/schema/generate.json

# Driver name. Should be lowercase (e.g., postgresql, sqlite).
driver = "(unknown)"

# Whether the driver is private. Most drivers are not.
private = false

# Programming language(s) to enable workflows for (go and rust are
# supported). Set to true for the defaults, or configure per language:
#
#   [lang.go]
#   skip-validate = true
[lang]

# Secrets to expose to the generated workflows, either for every
# context or scoped down:
#
#   [secrets]
#   MY_TOKEN = "GITHUB_SECRET_NAME"
#
#   [secrets.DB_PASSWORD]
#   secret = "TEST_DB_SECRET"
#   contexts = ["test", "validate"]
#[secrets]

# Enable AWS authentication:
#
#   [aws]
#   region = "us-west-2"

# Enable Google Cloud authentication:
#
#   gcloud = true
`

// Load reads and validates a generate.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw generate.toml contents.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	cfg, err := fromMap(raw)
	if err != nil {
		return nil, err
	}
	cfg.process()
	return cfg, nil
}

func fromMap(raw map[string]any) (*Config, error) {
	cfg := &Config{
		Driver:     "(unknown)",
		Lang:       map[string]*Lang{},
		Secrets:    map[string]SecretConfig{},
		Validation: Validation{ExtraDependencies: map[string]any{}},
	}
	for key, value := range raw {
		var err error
		switch key {
		case "driver":
			cfg.Driver, err = asString(key, value)
		case "environment":
			cfg.Environment, err = asString(key, value)
			if err == nil && strings.TrimSpace(cfg.Environment) == "" {
				err = fmt.Errorf("environment must be non-empty if provided")
			}
		case "private":
			cfg.Private, err = asBool(key, value)
		case "lang":
			cfg.Lang, err = parseLang(value)
		case "secrets":
			cfg.Secrets, err = parseSecrets(value)
		case "aws":
			cfg.AWS, err = parseAWS(value)
		case "gcloud":
			cfg.GCloud, err = asBool(key, value)
		case "validation":
			cfg.Validation, err = parseValidation(value)
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func parseLang(value any) (map[string]*Lang, error) {
	table, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("lang: expected a table, got %T", value)
	}
	langs := map[string]*Lang{}
	for name, v := range table {
		switch v := v.(type) {
		case bool:
			if v {
				langs[name] = &Lang{}
			} else {
				langs[name] = nil
			}
		case map[string]any:
			lang, err := parseLangTable(name, v)
			if err != nil {
				return nil, err
			}
			langs[name] = lang
		default:
			return nil, fmt.Errorf("lang.%s: expected a boolean or a table, got %T", name, v)
		}
	}
	return langs, nil
}

func parseLangTable(name string, table map[string]any) (*Lang, error) {
	lang := &Lang{}
	for key, v := range table {
		switch key {
		case "build":
			buildTable, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("lang.%s.build: expected a table, got %T", name, v)
			}
			for bk, bv := range buildTable {
				switch bk {
				case "additional-make-args":
					args, err := asStringSlice(fmt.Sprintf("lang.%s.build.%s", name, bk), bv)
					if err != nil {
						return nil, err
					}
					lang.Build.AdditionalMakeArgs = args
				case "lang-tools":
					tools, err := asStringSlice(fmt.Sprintf("lang.%s.build.%s", name, bk), bv)
					if err != nil {
						return nil, err
					}
					lang.Build.LangTools = tools
				default:
					return nil, fmt.Errorf("lang.%s.build: unknown key %q", name, bk)
				}
			}
		case "skip-validate":
			skip, err := asBool(fmt.Sprintf("lang.%s.skip-validate", name), v)
			if err != nil {
				return nil, err
			}
			lang.SkipValidate = skip
		default:
			return nil, fmt.Errorf("lang.%s: unknown key %q", name, key)
		}
	}
	return lang, nil
}

func parseSecrets(value any) (map[string]SecretConfig, error) {
	table, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secrets: expected a table, got %T", value)
	}
	secrets := map[string]SecretConfig{}
	for name, v := range table {
		switch v := v.(type) {
		case string:
			secrets[name] = SecretConfig{Secret: v, Contexts: append([]string(nil), Contexts...)}
		case map[string]any:
			sc := SecretConfig{Contexts: append([]string(nil), Contexts...)}
			haveSecret := false
			for key, sv := range v {
				switch key {
				case "secret":
					s, err := asString(fmt.Sprintf("secrets.%s.secret", name), sv)
					if err != nil {
						return nil, err
					}
					sc.Secret = s
					haveSecret = true
				case "contexts":
					contexts, err := asStringSlice(fmt.Sprintf("secrets.%s.contexts", name), sv)
					if err != nil {
						return nil, err
					}
					for _, ctx := range contexts {
						if !validContext(ctx) {
							return nil, fmt.Errorf("secrets.%s: unknown context %q", name, ctx)
						}
					}
					sc.Contexts = contexts
				default:
					return nil, fmt.Errorf("secrets.%s: unknown key %q", name, key)
				}
			}
			if !haveSecret {
				return nil, fmt.Errorf("secrets.%s: secret is required", name)
			}
			secrets[name] = sc
		default:
			return nil, fmt.Errorf("secrets.%s: expected a string or a table, got %T", name, v)
		}
	}
	return secrets, nil
}

func parseAWS(value any) (*AWS, error) {
	table, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("aws: expected a table, got %T", value)
	}
	aws := &AWS{}
	for key, v := range table {
		switch key {
		case "region":
			region, err := asString("aws.region", v)
			if err != nil {
				return nil, err
			}
			aws.Region = region
		default:
			return nil, fmt.Errorf("aws: unknown key %q", key)
		}
	}
	if aws.Region == "" {
		return nil, fmt.Errorf("aws.region is required")
	}
	return aws, nil
}

func parseValidation(value any) (Validation, error) {
	table, ok := value.(map[string]any)
	if !ok {
		return Validation{}, fmt.Errorf("validation: expected a table, got %T", value)
	}
	val := Validation{ExtraDependencies: map[string]any{}}
	for key, v := range table {
		switch key {
		case "extra-dependencies":
			deps, ok := v.(map[string]any)
			if !ok {
				return Validation{}, fmt.Errorf("validation.extra-dependencies: expected a table, got %T", v)
			}
			val.ExtraDependencies = deps
		default:
			return Validation{}, fmt.Errorf("validation: unknown key %q", key)
		}
	}
	return val, nil
}

func validContext(ctx string) bool {
	for _, c := range Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

func asString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", key, value)
	}
	return s, nil
}

func asBool(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected a boolean, got %T", key, value)
	}
	return b, nil
}

func asStringSlice(key string, value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array, got %T", key, value)
	}
	out := make([]string, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected an array of strings, got %T", key, v)
		}
		out[i] = s
	}
	return out, nil
}

// process fans the configured secrets out per context and derives the
// workflow permissions. The synthetic "all" context carries the union
// of every context plus the secrets implied by aws, gcloud and
// private. GITHUB_TOKEN is never forwarded; GitHub provides it and
// complains if a workflow tries to pass it explicitly.
func (c *Config) process() {
	c.secrets = make(map[string]map[string]string, len(Contexts)+1)
	for _, ctx := range Contexts {
		c.secrets[ctx] = map[string]string{}
	}
	for name, sc := range c.Secrets {
		for _, ctx := range sc.Contexts {
			c.secrets[ctx][name] = sc.Secret
		}
	}

	all := map[string]string{}
	for _, ctx := range Contexts {
		for name, secret := range c.secrets[ctx] {
			all[name] = secret
		}
	}
	if c.AWS != nil {
		all["AWS_ROLE"] = "AWS_ROLE"
		all["AWS_ROLE_SESSION_NAME"] = "AWS_ROLE_SESSION_NAME"
	}
	if c.GCloud {
		all["GCLOUD_SERVICE_ACCOUNT"] = "GCLOUD_SERVICE_ACCOUNT"
		all["GCLOUD_WORKLOAD_IDENTITY_PROVIDER"] = "GCLOUD_WORKLOAD_IDENTITY_PROVIDER"
	}
	if c.Private {
		all["COLUMNAR_CLOUD_API_TOKEN"] = "COLUMNAR_CLOUD_API_TOKEN"
	}
	for name, secret := range all {
		if secret == "GITHUB_TOKEN" {
			delete(all, name)
		}
	}
	c.secrets["all"] = all

	c.permissions = map[string]bool{}
	if c.AWS != nil || c.GCloud {
		c.permissions["id_token"] = true
	}
}

// ProcessedSecrets returns the per-context secret maps, including the
// synthetic "all" context.
func (c *Config) ProcessedSecrets() map[string]map[string]string {
	return c.secrets
}

// Permissions returns the extra workflow permissions the config
// implies.
func (c *Config) Permissions() map[string]bool {
	return c.permissions
}

// SecretRef binds one workflow environment variable to the GitHub
// secret that backs it.
type SecretRef struct {
	Env    string
	Secret string
}

// SecretRefs returns the secrets for one context, sorted by variable
// name so rendered workflows are deterministic.
func (c *Config) SecretRefs(context string) []SecretRef {
	m := c.secrets[context]
	refs := make([]SecretRef, 0, len(m))
	for env, secret := range m {
		refs = append(refs, SecretRef{Env: env, Secret: secret})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Env < refs[j].Env })
	return refs
}

// LangEnabled reports whether workflows should be generated for a
// language.
func (c *Config) LangEnabled(name string) bool {
	lang, ok := c.Lang[name]
	return ok && lang != nil
}

// EnabledLangs returns the enabled languages in a stable order.
func (c *Config) EnabledLangs() []string {
	var names []string
	for name, lang := range c.Lang {
		if lang != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
