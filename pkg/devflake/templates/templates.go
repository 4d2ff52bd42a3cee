package templates

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed flake.nix.tpl
var flakeContent string

//go:embed shell-env.sh.tpl
var shellEnvScript string

var t *template.Template

func init() {
	t = template.New("templates")

	t.Funcs(template.FuncMap{
		"nixStr":  NixString,
		"nixPkg":  NixPackage,
		"shquote": ShellQuote,
		"join":    strings.Join,
	})

	if _, err := t.Parse(flakeContent); err != nil {
		panic(fmt.Errorf("failed to parse flake.nix: %w", err))
	}

	if _, err := t.Parse(shellEnvScript); err != nil {
		panic(fmt.Errorf("failed to parse shell env script: %w", err))
	}
}

// NixString quotes s as a nix string literal, with interpolation disabled
func NixString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// NixPackage renders a package entry as a nix expression.
// "<attr>" comes from pkgs, "nixpkgs/<commit>#<attr>" from the index at that commit.
func NixPackage(pkg string) string {
	ref, attr, ok := strings.Cut(pkg, "#")
	if !ok {
		return "pkgs." + pkg
	}

	commit := strings.TrimPrefix(ref, "nixpkgs/")
	return fmt.Sprintf(`(import (builtins.fetchTarball "https://github.com/NixOS/nixpkgs/archive/%s.tar.gz") { inherit system; }).%s`, commit, attr)
}

// ShellQuote single quotes s for POSIX shells
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

type FlakeInput struct {
	Name    string
	Locator string
}

type EnvVar struct {
	Name string
	// Expr is a nix expression
	Expr string
}

type FlakeParams struct {
	DescriptorFile string
	Description    string
	Inputs         []FlakeInput
	Systems        []string

	// IndexInput is required, SystemsInput and BuilderInput may be empty
	IndexInput   string
	SystemsInput string
	BuilderInput string

	// Source is a nix path expression, e.g. ./.
	Source     string
	NativeDeps []string
	DevTools   []string
	Env        []EnvVar
}

func RenderFlake(params FlakeParams) ([]byte, error) {
	if params.IndexInput == "" {
		return nil, fmt.Errorf("failed to render flake.nix: no package index input")
	}

	b := new(bytes.Buffer)
	if err := t.ExecuteTemplate(b, "flake", params); err != nil {
		return nil, fmt.Errorf("failed to render flake.nix: %w", err)
	}

	return b.Bytes(), nil
}

type ShellEnvVar struct {
	Name  string
	Value string
}

type ShellEnvParams struct {
	Platform string
	Index    string
	Env      []ShellEnvVar
	Packages []string
}

func RenderShellEnv(params ShellEnvParams) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := t.ExecuteTemplate(b, "shell-env", params); err != nil {
		return nil, fmt.Errorf("failed to render shell env script: %w", err)
	}

	return b.Bytes(), nil
}
