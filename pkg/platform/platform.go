// Package platform enumerates the systems a descriptor produces outputs for.
package platform

import (
	"errors"
	"fmt"
	"iter"
	"runtime"
	"slices"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Platform is a nix system double, like "x86_64-linux"
type Platform string

const (
	X8664Linux    Platform = "x86_64-linux"
	Aarch64Linux  Platform = "aarch64-linux"
	X8664Darwin   Platform = "x86_64-darwin"
	Aarch64Darwin Platform = "aarch64-darwin"

	I686Linux   Platform = "i686-linux"
	Armv7lLinux Platform = "armv7l-linux"
)

// Default is the system list a descriptor iterates when it names none.
// It mirrors flake-utils' defaultSystems.
var Default = []Platform{
	X8664Linux,
	Aarch64Linux,
	X8664Darwin,
	Aarch64Darwin,
}

// Known contains every system Parse accepts
var Known = []Platform{
	X8664Linux,
	Aarch64Linux,
	X8664Darwin,
	Aarch64Darwin,
	I686Linux,
	Armv7lLinux,
}

func (p Platform) String() string {
	return string(p)
}

func (p Platform) IsValid() bool {
	return slices.Contains(Known, p)
}

// Arch returns the architecture half, e.g. "x86_64"
func (p Platform) Arch() string {
	arch, _ := p.split()
	return arch
}

// OS returns the kernel half, e.g. "linux"
func (p Platform) OS() string {
	_, os := p.split()
	return os
}

func (p Platform) split() (string, string) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '-' {
			return string(p[:i]), string(p[i+1:])
		}
	}
	return string(p), ""
}

func Parse(s string) (Platform, error) {
	p := Platform(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
	return p, nil
}

func ParseList(items []string) ([]Platform, error) {
	result := make([]Platform, 0, len(items))
	for _, item := range items {
		p, err := Parse(item)
		if err != nil {
			return nil, err
		}
		if slices.Contains(result, p) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Detect maps the running GOOS/GOARCH onto a nix system
func Detect() (Platform, error) {
	return fromGo(runtime.GOOS, runtime.GOARCH)
}

func fromGo(goos, goarch string) (Platform, error) {
	var arch string
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i686"
	case "arm64":
		arch = "aarch64"
	case "arm":
		arch = "armv7l"
	default:
		return "", fmt.Errorf("%w: architecture %s", ErrUnsupportedPlatform, goarch)
	}

	switch goos {
	case "linux", "darwin":
	default:
		return "", fmt.Errorf("%w: operating system %s", ErrUnsupportedPlatform, goos)
	}

	return Parse(arch + "-" + goos)
}

// ForEach lazily calls fn once per system, in the given order.
// The sequence holds no state, so ranging over it again calls fn again.
func ForEach[T any](systems []Platform, fn func(Platform) T) iter.Seq2[Platform, T] {
	return func(yield func(Platform, T) bool) {
		for _, p := range systems {
			if !yield(p, fn(p)) {
				return
			}
		}
	}
}
