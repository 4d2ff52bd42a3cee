package devflake

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nxtcoder17/devflake/pkg/devflake/templates"
)

// SystemsInput is the input providing eachSystem, when declared
const SystemsInput = "utils"

// nixPath renders the source tree as a nix path, relative to the rendered flake
func nixPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "/. + " + templates.NixString(filepath.ToSlash(path))
	}

	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "./."
	}

	if strings.ContainsAny(rel, " \"'${}") {
		return "./. + " + templates.NixString("/"+rel)
	}
	return "./" + rel
}

// FlakeParams maps the flake onto flake.nix template values, inputs are written at their locked refs
func (f *Flake) FlakeParams(dir string) (templates.FlakeParams, error) {
	params := templates.FlakeParams{
		DescriptorFile: filepath.Base(f.Descriptor.File()),
		Description:    f.Descriptor.Description,
		IndexInput:     PackageIndexInput,
		Source:         nixPath(dir, f.source),
		NativeDeps:     slices.Clone(f.nativeDeps),
		DevTools:       slices.Clone(f.devTools),
	}

	for _, r := range f.Inputs {
		params.Inputs = append(params.Inputs, templates.FlakeInput{Name: r.Name, Locator: r.LockedRef()})
	}

	if _, ok := f.byName[SystemsInput]; ok {
		params.SystemsInput = SystemsInput
	}

	if _, ok := f.byName[BuilderInput]; ok {
		params.BuilderInput = BuilderInput
	}

	for _, p := range f.Systems {
		params.Systems = append(params.Systems, p.String())
	}

	env := f.Descriptor.DevShell.Env
	for _, name := range slices.Sorted(maps.Keys(env)) {
		expr, err := nixEnvExpr(env[name])
		if err != nil {
			return templates.FlakeParams{}, fmt.Errorf("%w: env %s: %w", ErrInvalidDescriptor, name, err)
		}
		params.Env = append(params.Env, templates.EnvVar{Name: name, Expr: expr})
	}

	return params, nil
}

// RenderFlake renders flake.nix for a file placed in dir
func (f *Flake) RenderFlake(dir string) ([]byte, error) {
	params, err := f.FlakeParams(dir)
	if err != nil {
		return nil, err
	}
	return templates.RenderFlake(params)
}

// WriteFlake renders flake.nix to dest, defaulting to the descriptor's directory.
// The file is rewritten only when its rendered contents changed, or force is set.
func (f *Flake) WriteFlake(dest string, force bool) (bool, error) {
	if dest == "" {
		dest = filepath.Join(f.Descriptor.Dir(), FlakeFileName)
	}

	b, err := f.RenderFlake(filepath.Dir(dest))
	if err != nil {
		return false, err
	}

	hashFile := filepath.Join(filepath.Dir(dest), StateDirName, filepath.Base(dest)+".sha256")

	changed, err := compareAndSaveHash(hashFile, shortSum(b))
	if err != nil {
		return false, err
	}

	if !changed && !force {
		if _, err := os.Stat(dest); err == nil {
			slog.Debug("flake is up to date", "file", dest)
			return false, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
	}

	if err := os.WriteFile(dest, b, 0o644); err != nil {
		// forget the hash, so the next run retries
		os.Remove(hashFile)
		return false, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	slog.Debug("wrote flake", "file", dest)
	return true, nil
}

// ShellEnv renders the shell's environment as a sourceable POSIX script
func (s ShellOutput) ShellEnv() ([]byte, error) {
	params := templates.ShellEnvParams{
		Platform: s.Platform.String(),
		Index:    s.Index,
		Packages: s.Packages(),
	}

	for _, e := range s.Env {
		params.Env = append(params.Env, templates.ShellEnvVar{Name: e.Name, Value: e.Value})
	}

	return templates.RenderShellEnv(params)
}
