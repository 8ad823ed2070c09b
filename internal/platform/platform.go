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

// Package platform maps Docker-style platform strings and machine names
// onto the architecture tokens the toolchains use.
package platform

import (
	"fmt"
	"runtime"
)

// ErrUnsupported reports a platform outside the supported set.
var ErrUnsupported = fmt.Errorf("unsupported platform")

// Supported lists the platform strings the installers accept, in the
// form Docker's TARGETPLATFORM uses.
var Supported = []string{"linux/amd64", "linux/arm64"}

var goArch = map[string]string{
	"linux/amd64": "amd64",
	"linux/arm64": "arm64",
}

var rustArch = map[string]string{
	"linux/amd64": "x86_64",
	"linux/arm64": "aarch64",
}

// GoArch returns the Go release architecture token for a platform string.
func GoArch(platform string) (string, error) {
	arch, ok := goArch[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, platform)
	}
	return arch, nil
}

// RustArch returns the rustup target architecture for a platform string.
func RustArch(platform string) (string, error) {
	arch, ok := rustArch[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, platform)
	}
	return arch, nil
}

// RustTriple returns the full rustup target triple for a platform string.
func RustTriple(platform string) (string, error) {
	arch, err := RustArch(platform)
	if err != nil {
		return "", err
	}
	return arch + "-unknown-linux-gnu", nil
}

// Normalize maps a machine name as reported by the OS or a container
// runtime onto amd64 or arm64.
func Normalize(machine string) (string, error) {
	switch machine {
	case "AMD64", "x86_64", "amd64":
		return "amd64", nil
	case "aarch64", "arm64v8", "arm64":
		return "arm64", nil
	}
	return "", fmt.Errorf("%s is not a recognized architecture", machine)
}

// Host returns the normalized architecture of the running machine.
func Host() (string, error) {
	return Normalize(runtime.GOARCH)
}
