package devflake

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nxtcoder17/devflake/pkg/inputs"
	"github.com/nxtcoder17/devflake/pkg/platform"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	YAMLFormat Format = "yaml"
	TOMLFormat Format = "toml"
)

func formatOf(file string) Format {
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		return TOMLFormat
	}
	return YAMLFormat
}

type PackageSpec struct {
	// Source is the source tree, relative to the descriptor's directory
	Source     string    `yaml:"source,omitempty" toml:"source,omitempty"`
	NativeDeps []Package `yaml:"nativeDeps" toml:"nativeDeps"`
}

type ShellSpec struct {
	Tools []Package         `yaml:"tools" toml:"tools"`
	Env   map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// Descriptor is the declarative environment description. It is not modified after Load.
type Descriptor struct {
	Description string            `yaml:"description,omitempty" toml:"description,omitempty"`
	Inputs      map[string]string `yaml:"inputs" toml:"inputs"`
	Systems     []string          `yaml:"systems,omitempty" toml:"systems,omitempty"`
	Package     PackageSpec       `yaml:"package" toml:"package"`
	DevShell    ShellSpec         `yaml:"devShell" toml:"devShell"`

	// AUTO FILLED
	file      string     `yaml:"-" toml:"-"`
	sha256Sum string     `yaml:"-" toml:"-"`
	rawNode   *yaml.Node `yaml:"-" toml:"-"`
}

// Default returns the descriptor for a GTK4 / Cairo / Poppler rust application
func Default() *Descriptor {
	d := &Descriptor{
		Description: "A GTK4 application with Cairo and Poppler",
		Inputs:      make(map[string]string, len(DefaultInputs)),
		Systems:     make([]string, 0, len(platform.Default)),
		Package: PackageSpec{
			Source: ".",
		},
		DevShell: ShellSpec{
			Env: maps.Clone(DefaultEnv),
		},
	}

	for _, in := range DefaultInputs {
		d.Inputs[in.Name] = in.Locator
	}

	for _, p := range platform.Default {
		d.Systems = append(d.Systems, p.String())
	}

	for _, name := range DefaultNativeDeps {
		d.Package.NativeDeps = append(d.Package.NativeDeps, Package{Name: name})
	}

	for _, name := range DefaultDevTools {
		d.DevShell.Tools = append(d.DevShell.Tools, Package{Name: name})
	}

	return d
}

// File returns the path the descriptor was loaded from, if any
func (d *Descriptor) File() string {
	return d.file
}

// Dir is the directory relative paths in the descriptor resolve against
func (d *Descriptor) Dir() string {
	if d.file == "" {
		return "."
	}
	return filepath.Dir(d.file)
}

// Hash identifies the descriptor contents. A loaded descriptor reports the hash of its file,
// one built in memory is hashed on every call.
func (d *Descriptor) Hash() (string, error) {
	if d.sha256Sum != "" {
		return d.sha256Sum, nil
	}

	b, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to hash descriptor: %w", err)
	}
	return shortSum(b), nil
}

func shortSum(b []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(b))[:12]
}

// SourceDir is the package source tree, joined onto Dir unless absolute
func (d *Descriptor) SourceDir() string {
	if filepath.IsAbs(d.Package.Source) {
		return filepath.Clean(d.Package.Source)
	}
	return filepath.Join(d.Dir(), d.Package.Source)
}

// InputList returns the declared inputs ordered by name
func (d *Descriptor) InputList() []inputs.Input {
	result := make([]inputs.Input, 0, len(d.Inputs))
	for _, name := range slices.Sorted(maps.Keys(d.Inputs)) {
		result = append(result, inputs.Input{Name: name, Locator: d.Inputs[name]})
	}
	return result
}

// Platforms returns the supported systems, platform.Default when none are declared
func (d *Descriptor) Platforms() ([]platform.Platform, error) {
	if len(d.Systems) == 0 {
		return slices.Clone(platform.Default), nil
	}
	return platform.ParseList(d.Systems)
}

func (d *Descriptor) Validate() error {
	if len(d.Inputs) == 0 {
		return fmt.Errorf("%w: no inputs declared", ErrInvalidDescriptor)
	}

	if _, ok := d.Inputs[PackageIndexInput]; !ok {
		return fmt.Errorf("%w: inputs must have a %q key, pointing at the package index", ErrInvalidDescriptor, PackageIndexInput)
	}

	if err := inputs.Validate(d.InputList()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	if _, err := d.Platforms(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	for _, pkg := range slices.Concat(d.Package.NativeDeps, d.DevShell.Tools) {
		if pkg.Name == "" {
			return fmt.Errorf("%w: empty package entry", ErrInvalidDescriptor)
		}
	}

	for name, value := range d.DevShell.Env {
		if !isEnvName(name) {
			return fmt.Errorf("%w: invalid env variable name %q", ErrInvalidDescriptor, name)
		}
		if err := checkEnvReferences(value); err != nil {
			return fmt.Errorf("%w: env %s: %w", ErrInvalidDescriptor, name, err)
		}
	}

	return nil
}

// Load reads a YAML or TOML descriptor, chosen by file extension
func Load(file string) (*Descriptor, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file (%s): %w", file, err)
	}

	var d Descriptor

	switch formatOf(file) {
	case TOMLFormat:
		if _, err := toml.Decode(string(b), &d); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, file, err)
		}
	default:
		// Parse as yaml.Node to preserve comments and structure
		var rootNode yaml.Node
		if err := yaml.Unmarshal(b, &rootNode); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, file, err)
		}

		if err := rootNode.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, file, err)
		}
		d.rawNode = &rootNode
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	d.file = abs
	d.sha256Sum = shortSum(b)

	if d.Package.Source == "" {
		d.Package.Source = "."
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded descriptor", "file", abs, "hash", d.sha256Sum)
	return &d, nil
}

// FindDescriptor searches dir and its parents for the nearest descriptor file
func FindDescriptor(dir string) (string, error) {
	oldDir := ""

	for oldDir != dir {
		for _, fn := range DescriptorFileNames {
			if _, err := os.Stat(filepath.Join(dir, fn)); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					return "", err
				}
				continue
			}

			return filepath.Join(dir, fn), nil
		}

		oldDir = dir
		dir = filepath.Dir(dir)
	}

	return "", ErrDescriptorNotFound
}

// SyncToDisk writes the descriptor to file.
// A YAML descriptor that was loaded from disk keeps its comments and ordering.
func (d *Descriptor) SyncToDisk(file string) error {
	if file == "" {
		return fmt.Errorf("required param `file` not provided")
	}

	output, err := os.OpenFile(file,
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
		0o644,
	)
	if err != nil {
		return err
	}
	defer output.Close()

	if formatOf(file) == TOMLFormat {
		return toml.NewEncoder(output).Encode(d)
	}

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(2)
	defer encoder.Close()

	if d.rawNode != nil {
		return encoder.Encode(d.rawNode)
	}

	return encoder.Encode(d)
}

// Init writes the default descriptor to dest, refusing to overwrite an existing file
func Init(dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("descriptor file (%s) already exists", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	return Default().SyncToDisk(dest)
}

func compareAndSaveHash(saveToFile string, sha256Sum string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(saveToFile), 0o755); err != nil {
		return false, fmt.Errorf("failed to create dir %s: %w", filepath.Dir(saveToFile), err)
	}

	hasHashChanged := true
	if hash, err := os.ReadFile(saveToFile); err == nil {
		slog.Debug("comparing descriptor hash", "hash-file", saveToFile, "file.hash", string(hash), "descriptor.hash", sha256Sum)
		hasHashChanged = string(hash) != sha256Sum
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read hash file (%s): %w", saveToFile, err)
	}

	if hasHashChanged {
		slog.Debug("descriptor hash changed", "to", sha256Sum)
		if err := os.WriteFile(saveToFile, []byte(sha256Sum), 0o644); err != nil {
			return false, fmt.Errorf("failed to write sha256 hash (path: %s): %w", saveToFile, err)
		}
	}

	return hasHashChanged, nil
}
