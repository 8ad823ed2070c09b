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

// Package gitutil wraps the go-git operations the dev tools share:
// version detection from tags, changelog walks, and index listings.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a git repository together with its work tree root.
type Repo struct {
	repo *git.Repository
	root string
}

// Open locates the repository containing path, searching parent
// directories the way the git CLI does.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%s is not in a git repository: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the absolute path of the work tree.
func (r *Repo) Root() string {
	return r.root
}

// HeadShort returns the abbreviated hash of HEAD.
func (r *Repo) HeadShort() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String()[:7], nil
}

// Tags returns all tag names in the repository.
func (r *Repo) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// resolveCommit peels a revision (tag name, HEAD, hash) to its commit.
func (r *Repo) resolveCommit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", rev, err)
	}
	if tag, err := r.repo.TagObject(*hash); err == nil {
		return tag.Commit()
	}
	return r.repo.CommitObject(*hash)
}

// reachable collects every commit reachable from rev.
func (r *Repo) reachable(rev string) (map[plumbing.Hash]bool, error) {
	start, err := r.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	seen := map[plumbing.Hash]bool{}
	queue := []*object.Commit{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c.Hash] {
			continue
		}
		seen[c.Hash] = true
		err := c.Parents().ForEach(func(p *object.Commit) error {
			if !seen[p.Hash] {
				queue = append(queue, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return seen, nil
}

// walk visits the commits reachable from end but not from start, newest
// first. start may be empty to walk the full history.
func (r *Repo) walk(end, start string, fn func(*object.Commit) error) error {
	endCommit, err := r.resolveCommit(end)
	if err != nil {
		return err
	}
	var hide map[plumbing.Hash]bool
	if start != "" {
		hide, err = r.reachable(start)
		if err != nil {
			return err
		}
	}
	iter := object.NewCommitIterCTime(endCommit, hide, nil)
	defer iter.Close()
	return iter.ForEach(fn)
}

// CountSince returns how many commits end is ahead of start, the
// equivalent of git rev-list start..end --count.
func (r *Repo) CountSince(end, start string) (int, error) {
	count := 0
	err := r.walk(end, start, func(*object.Commit) error {
		count++
		return nil
	})
	return count, err
}

// Commit is one entry in a revision walk.
type Commit struct {
	ShortID string
	Title   string
	// Paths the commit changed relative to its first parent. A
	// parentless commit reports its top-level tree entries instead.
	Paths []string
}

// CommitsSince returns the commits reachable from end but not from
// start, newest first, with the paths each one touched.
func (r *Repo) CommitsSince(end, start string) ([]Commit, error) {
	var out []Commit
	err := r.walk(end, start, func(c *object.Commit) error {
		paths, err := changedPaths(c)
		if err != nil {
			return err
		}
		out = append(out, Commit{
			ShortID: c.Hash.String()[:7],
			Title:   firstLine(c.Message),
			Paths:   paths,
		})
		return nil
	})
	return out, err
}

func changedPaths(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	if c.NumParents() == 0 {
		var names []string
		for _, e := range tree.Entries {
			names = append(names, e.Name)
		}
		return names, nil
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ch := range changes {
		if ch.From.Name != "" {
			names = append(names, ch.From.Name)
		}
		if ch.To.Name != "" && ch.To.Name != ch.From.Name {
			names = append(names, ch.To.Name)
		}
	}
	return names, nil
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

// UncommittedChanges lists modified tracked files in porcelain style.
// Untracked files are ignored, matching git status --porcelain minus
// the ?? entries.
func (r *Repo) UncommittedChanges() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	var lines []string
	for path, fs := range status {
		if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
			continue
		}
		lines = append(lines, fmt.Sprintf("%c%c %s", rune(fs.Staging), rune(fs.Worktree), path))
	}
	sort.Strings(lines)
	return lines, nil
}

// TrackedFiles returns the paths recorded in the index, sorted.
func (r *Repo) TrackedFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFileAt returns the contents of path in the tree of the given
// revision.
func (r *Repo) ReadFileAt(rev, path string) ([]byte, error) {
	c, err := r.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	f, err := c.File(path)
	if err != nil {
		return nil, fmt.Errorf("%s not found at %s: %w", path, rev, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(contents), nil
}

// WorktreeFile reads a tracked file's current bytes from the work tree.
// The boolean reports whether the file still exists on disk.
func (r *Repo) WorktreeFile(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(r.root, name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
