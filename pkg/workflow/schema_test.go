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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("\n")))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
	assert.Equal(t, "Schema for generate.toml", doc["title"])
	assert.Equal(t, false, doc["additionalProperties"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"driver", "environment", "private", "lang", "secrets", "aws", "gcloud", "validation"} {
		assert.Contains(t, props, key)
	}

	driver, ok := props["driver"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "(unknown)", driver["default"])

	// lang and secrets values accept both the shorthand and the table
	// forms.
	for _, key := range []string{"lang", "secrets"} {
		prop, ok := props[key].(map[string]any)
		require.True(t, ok, key)
		extra, ok := prop["additionalProperties"].(map[string]any)
		require.True(t, ok, key)
		assert.Contains(t, extra, "oneOf", key)
	}

	aws, ok := props["aws"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, aws["required"], "region")
}
