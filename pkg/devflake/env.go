package devflake

import (
	"fmt"
	"regexp"
	"strings"
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isEnvName(s string) bool {
	return envNamePattern.MatchString(s)
}

var attrPathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'-]*(\.[A-Za-z_][A-Za-z0-9_'-]*)*$`)

// envScope is everything an env value may reference.
//
//	${pkgs.<attr>}  installable for <attr> in the platform's package index
//	${system}       the platform, e.g. x86_64-linux
//	${src}          absolute path of the source tree
type envScope struct {
	PackageRef func(attr string) string
	System     string
	Source     string
}

func (s envScope) lookup(name string) (string, bool) {
	if attr, ok := strings.CutPrefix(name, "pkgs."); ok {
		if !attrPathPattern.MatchString(attr) {
			return "", false
		}
		return s.PackageRef(attr), true
	}

	switch name {
	case "system":
		return s.System, true
	case "src":
		return s.Source, true
	}

	return "", false
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}

// scanEnv splits value into literal text and references in one pass.
// "$$" is a literal "$", "${name}" and "$name" are references, any other "$" is an error.
func scanEnv(value string, literal func(string), ref func(string)) error {
	start := 0
	for i := 0; i < len(value); i++ {
		if value[i] != '$' {
			continue
		}

		literal(value[start:i])

		if i+1 == len(value) {
			return fmt.Errorf("trailing $ at offset %d, write $$ for a literal $", i)
		}

		switch c := value[i+1]; {
		case c == '$':
			literal("$")
			i++
		case c == '{':
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				return fmt.Errorf("unclosed ${ at offset %d", i)
			}
			name := value[i+2 : i+2+end]
			if name == "" {
				return fmt.Errorf("empty reference ${} at offset %d", i)
			}
			ref(name)
			i += 2 + end
		case isNameStart(c):
			j := i + 1
			for j < len(value) && isNameChar(value[j]) {
				j++
			}
			ref(value[i+1 : j])
			i = j - 1
		default:
			return fmt.Errorf("stray $ at offset %d, write $$ for a literal $", i)
		}

		start = i + 1
	}

	literal(value[start:])
	return nil
}

// expandEnv substitutes references in value
func expandEnv(value string, scope envScope) (string, error) {
	var b strings.Builder
	var unknown []string

	err := scanEnv(value, func(s string) { b.WriteString(s) }, func(name string) {
		v, ok := scope.lookup(name)
		if !ok {
			unknown = append(unknown, name)
			return
		}
		b.WriteString(v)
	})
	if err != nil {
		return "", err
	}

	if len(unknown) > 0 {
		return "", fmt.Errorf("unknown reference(s) %s, only ${pkgs.<attr>}, ${system} and ${src} are allowed", strings.Join(unknown, ", "))
	}

	return b.String(), nil
}

// checkEnvReferences validates value without a resolved package index
func checkEnvReferences(value string) error {
	_, err := expandEnv(value, envScope{PackageRef: func(attr string) string { return attr }})
	return err
}

var nixLiteralEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "$", `\$`)

// nixEnvExpr rewrites value as a nix string, references become nix interpolations
func nixEnvExpr(value string) (string, error) {
	var b strings.Builder
	b.WriteByte('"')

	err := scanEnv(value, func(s string) { nixLiteralEscaper.WriteString(&b, s) }, func(name string) {
		b.WriteString("${" + name + "}")
	})
	if err != nil {
		return "", err
	}

	b.WriteByte('"')
	return b.String(), nil
}
