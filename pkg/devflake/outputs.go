package devflake

import (
	"github.com/nxtcoder17/devflake/pkg/platform"
	"github.com/nxtcoder17/devflake/pkg/set"
)

// BuildOutput describes the default package of one platform.
// Compilation itself belongs to the builder input.
type BuildOutput struct {
	Platform   platform.Platform `json:"platform" yaml:"platform"`
	Source     string            `json:"source" yaml:"source"`
	SourceHash string            `json:"sourceHash,omitempty" yaml:"sourceHash,omitempty"`
	NativeDeps []string          `json:"nativeDeps" yaml:"nativeDeps"`
	Builder    string            `json:"builder" yaml:"builder"`
	Index      string            `json:"index" yaml:"index"`
}

type EnvBinding struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ShellOutput describes the development shell of one platform
type ShellOutput struct {
	Platform   platform.Platform `json:"platform" yaml:"platform"`
	NativeDeps []string          `json:"nativeDeps" yaml:"nativeDeps"`
	DevTools   []string          `json:"devTools" yaml:"devTools"`
	Env        []EnvBinding      `json:"env" yaml:"env"`
	Index      string            `json:"index" yaml:"index"`
}

// Packages is every package the shell puts on PATH: native deps first, then dev tools
func (s ShellOutput) Packages() []string {
	return set.From(s.NativeDeps...).Union(set.From(s.DevTools...)).List()
}

// Outputs is the per-platform output record
type Outputs struct {
	DefaultPackage BuildOutput `json:"defaultPackage" yaml:"defaultPackage"`
	DevShell       ShellOutput `json:"devShell" yaml:"devShell"`
}
