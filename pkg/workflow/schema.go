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
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// The schema structs mirror the generate.toml surface purely for
// schema generation; decoding lives in config.go because lang and
// secrets values take two shapes.

type schemaLangBuild struct {
	AdditionalMakeArgs []string `json:"additional-make-args,omitempty" jsonschema:"description=A list of additional arguments to pass to adbc-make."`
	LangTools          []string `json:"lang-tools,omitempty" jsonschema:"description=Install tools for these languages to use in the build."`
}

type schemaLang struct {
	Build        *schemaLangBuild `json:"build,omitempty" jsonschema:"description=Configuration for building the driver."`
	SkipValidate bool             `json:"skip-validate,omitempty" jsonschema:"description=Whether to skip the validation suite in CI (this should only be used temporarily while setting up a driver)"`
}

type schemaSecret struct {
	Secret   string   `json:"secret" jsonschema:"description=The name of the GitHub secret to use for this secret variable"`
	Contexts []string `json:"contexts,omitempty" jsonschema:"description=Workflow contexts where this secret should be available"`
}

type schemaAWS struct {
	Region string `json:"region" jsonschema:"description=AWS region to use for authentication (e.g. us-west-2 or us-east-1)"`
}

type schemaValidation struct {
	ExtraDependencies map[string]any `json:"extra-dependencies,omitempty"`
}

type schemaConfig struct {
	Driver      string                  `json:"driver,omitempty"`
	Environment string                  `json:"environment,omitempty" jsonschema:"description=Name of a GitHub Actions Environment to use when including secrets in workflows"`
	Private     bool                    `json:"private,omitempty" jsonschema:"description=Whether the driver is private. Most drivers will not be private so you can omit this."`
	Lang        map[string]*schemaLang  `json:"lang,omitempty"`
	Secrets     map[string]schemaSecret `json:"secrets,omitempty"`
	AWS         *schemaAWS              `json:"aws,omitempty"`
	GCloud      bool                    `json:"gcloud,omitempty"`
	Validation  *schemaValidation       `json:"validation,omitempty"`
}

const (
	langDoc = `Programming language(s) to enable workflows for. Only go and rust are supported. Keys should be lowercase. Set to true to enable with default config, or false (the default) to disable. Example:

[lang]
go = true

[lang.rust.build]
additional-make-args = ["example"]`

	secretsDoc = `Secrets to enable in workflows. By default, no secrets are available in your generated workflows unless you specify them here.

To make a secret available in all workflows, use the simple syntax:

[secrets]
MY_TOKEN = "GITHUB_SECRET_NAME"

If you want more fine-grained control, you can restrict secrets to specific workflows by listing contexts:

[secrets.DB_PASSWORD]
secret = "TEST_DB_SECRET"
contexts = ["test", "validate"]`

	awsDoc = `Enables AWS authentication in workflows. Automatically adds AWS_ROLE and AWS_ROLE_SESSION_NAME secrets, and sets id_token permissions. Example:

[aws]
region = "us-west-2"`

	gcloudDoc = `Enables Google Cloud authentication in workflows. Automatically adds GCLOUD_SERVICE_ACCOUNT and GCLOUD_WORKLOAD_IDENTITY_PROVIDER secrets, and sets id_token permissions. Set to true to enable.`

	extraDepsDoc = `Additional dependencies to install for validation workflows. Specify as key-value pairs. Example:

[validation.extra-dependencies]
pytest = "^7.0"
black = "*"`
)

// Schema builds the JSON Schema for generate.toml, suitable for
// editor validation of driver repositories' configs (e.g. with tombi's
// #:schema directive).
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&schemaConfig{})

	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.ID = ""
	schema.Title = "Schema for generate.toml"
	schema.Description = "You can validate your generate.toml against this schema with tools like tombi (https://tombi-toml.github.io/tombi/docs/linter). Requires placing a `#:schema` directive at the top of your generate.toml file."

	if prop, ok := schema.Properties.Get("driver"); ok {
		prop.Description = "Driver name. Should be lowercase (e.g., postgresql, sqlite)"
		prop.Default = "(unknown)"
	}
	if prop, ok := schema.Properties.Get("private"); ok {
		prop.Default = false
	}
	if prop, ok := schema.Properties.Get("gcloud"); ok {
		prop.Description = gcloudDoc
		prop.Default = false
	}
	if prop, ok := schema.Properties.Get("aws"); ok {
		prop.Description = awsDoc
	}

	// lang values are either a boolean shorthand or a full table.
	if prop, ok := schema.Properties.Get("lang"); ok {
		prop.Description = langDoc
		prop.AdditionalProperties = &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "boolean"},
				prop.AdditionalProperties,
			},
		}
	}

	// secrets values are either a bare secret name or a scoped table.
	if prop, ok := schema.Properties.Get("secrets"); ok {
		prop.Description = secretsDoc
		secretSchema := prop.AdditionalProperties
		if contexts, ok := secretSchema.Properties.Get("contexts"); ok && contexts.Items != nil {
			enum := make([]any, len(Contexts))
			for i, c := range Contexts {
				enum[i] = c
			}
			contexts.Items.Enum = enum
		}
		prop.AdditionalProperties = &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "string"},
				secretSchema,
			},
		}
	}

	if prop, ok := schema.Properties.Get("validation"); ok {
		prop.Description = "Configuration for validation workflows. Currently supports specifying extra dependencies."
		if deps, ok := prop.Properties.Get("extra-dependencies"); ok {
			deps.Description = extraDepsDoc
		}
	}

	return schema
}

// SchemaJSON renders the schema as indented JSON with a trailing
// newline, ready to write to a file.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
