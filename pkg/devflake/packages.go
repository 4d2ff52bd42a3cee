package devflake

import (
	"fmt"
	"strings"

	"github.com/nxtcoder17/devflake/pkg/inputs"
	"gopkg.in/yaml.v3"
)

// Package is an attribute of the package index, optionally pinned to its own index revision
type Package struct {
	Name   string
	Commit string
}

func (p Package) String() string {
	if p.Commit == "" {
		return p.Name
	}
	return fmt.Sprintf("nixpkgs/%s#%s", p.Commit, p.Name)
}

func (p *Package) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: package must be a string: %w", value.Line, err)
	}

	np, err := parsePackage(s)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

func (p Package) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *Package) UnmarshalText(b []byte) error {
	np, err := parsePackage(string(b))
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

func (p Package) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// parsePackage accepts "<attr>" or "nixpkgs/<commit>#<attr>"
func parsePackage(pkg string) (*Package, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return nil, fmt.Errorf("%w: empty package name", ErrInvalidDescriptor)
	}

	parts := strings.SplitN(pkg, "#", 2)

	switch len(parts) {
	case 1:
		// INFO: means just package name
		if strings.Contains(pkg, "/") {
			return nil, fmt.Errorf("%w: invalid package format: %s", ErrInvalidDescriptor, pkg)
		}
		return &Package{Name: pkg}, nil
	default:
		commit, ok := strings.CutPrefix(parts[0], "nixpkgs/")
		if !ok || !inputs.IsRevision(commit) || parts[1] == "" {
			return nil, fmt.Errorf("%w: invalid package format: %s, expected nixpkgs/<commit>#<name>", ErrInvalidDescriptor, pkg)
		}
		return &Package{Name: parts[1], Commit: commit}, nil
	}
}

func packageNames(pkgs []Package) []string {
	result := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		result = append(result, p.String())
	}
	return result
}
