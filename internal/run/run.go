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

// Package run executes the external tools the build commands drive
// (go, cargo, docker, gh, java, pytest) with consistent echoing.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/adbc-drivers/dev/internal/log"
)

// Echo mirrors every command to stderr before running it, the way
// make prints its recipe lines. Set from --verbose or VERBOSE.
var Echo = false

// Options modify a single invocation.
type Options struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are layered over the inherited environment.
	// CGO_CFLAGS and CGO_LDFLAGS append to an existing value instead
	// of replacing it.
	Env map[string]string
}

// Info prints a progress line to stderr, prefixed like the build
// scripts' output so interleaved tool output stays readable.
func Info(a ...any) {
	fmt.Fprintln(os.Stderr, append([]any{"!"}, a...)...)
}

// Command runs a program with stdout and stderr attached to ours,
// failing if it exits non-zero.
func Command(ctx context.Context, name string, args []string, opts Options) error {
	cmd := prepare(ctx, name, args, opts)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Output runs a program and returns its trimmed stdout, failing if it
// exits non-zero. Stderr passes through to ours.
func Output(ctx context.Context, name string, args []string, opts Options) (string, error) {
	out, err := RawOutput(ctx, name, args, opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RawOutput is Output without the trimming, for callers that write
// the captured bytes somewhere verbatim.
func RawOutput(ctx context.Context, name string, args []string, opts Options) ([]byte, error) {
	cmd := prepare(ctx, name, args, opts)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func prepare(ctx context.Context, name string, args []string, opts Options) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), opts.Env)
	}
	if Echo {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		fmt.Fprintln(os.Stderr, "*", fmt.Sprintf("[%s]", dir), quoteArgs(append([]string{name}, args...)))
		for _, k := range sortedKeys(opts.Env) {
			fmt.Fprintln(os.Stderr, "*", "[env]", k+"="+opts.Env[k])
		}
	}
	log.Debug("exec", zap.String("cmd", name), zap.Strings("args", args), zap.String("dir", opts.Dir))
	return cmd
}

// mergeEnv layers overrides onto a base environment. The CGO flag
// variables accumulate because the caller and the toolchain both
// contribute flags.
func mergeEnv(base []string, overrides map[string]string) []string {
	appendVars := map[string]bool{"CGO_CFLAGS": true, "CGO_LDFLAGS": true}
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		if override, has := overrides[k]; has {
			seen[k] = true
			if appendVars[k] && v != "" {
				out = append(out, k+"="+v+" "+override)
			} else {
				out = append(out, k+"="+override)
			}
			continue
		}
		out = append(out, kv)
	}
	for _, k := range sortedKeys(overrides) {
		if !seen[k] {
			out = append(out, k+"="+overrides[k])
		}
	}
	return out
}

// ExitCode extracts the exit code from a failed Command, so callers
// can mirror a child's status. Returns -1 when the process never ran.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'`$&|<>(){}[];*?~#\\") {
			quoted[i] = strconv.Quote(arg)
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
