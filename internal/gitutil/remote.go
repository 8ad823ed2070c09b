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

package gitutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RemoteTags lists the tags a remote repository advertises, without
// cloning it. The result maps tag name to commit hash; for annotated
// tags the peeled hash wins over the tag object's own hash.
func RemoteTags(ctx context.Context, url string) (map[string]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs for %s: %w", url, err)
	}

	tags := make(map[string]string)
	for _, ref := range refs {
		name, ok := strings.CutPrefix(ref.Name().String(), "refs/tags/")
		if !ok {
			continue
		}
		if peeled, ok := strings.CutSuffix(name, "^{}"); ok {
			tags[peeled] = ref.Hash().String()
		} else if _, seen := tags[name]; !seen {
			tags[name] = ref.Hash().String()
		}
	}
	return tags, nil
}
