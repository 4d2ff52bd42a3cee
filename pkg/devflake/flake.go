package devflake

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/nxtcoder17/devflake/pkg/inputs"
	"github.com/nxtcoder17/devflake/pkg/platform"
	"github.com/nxtcoder17/devflake/pkg/set"
	"golang.org/x/sync/errgroup"
)

// Flake is a descriptor whose inputs are pinned. Every output is a pure function of it and a platform.
type Flake struct {
	Descriptor *Descriptor
	Inputs     []inputs.Resolved
	Systems    []platform.Platform

	nativeDeps []string
	devTools   []string
	source     string
	hash       string
	byName     map[string]inputs.Resolved
}

// ResolveInputs pins every input of d. Any unresolved input fails the whole call, no Flake is returned.
func ResolveInputs(ctx context.Context, d *Descriptor, r *inputs.Resolver) (*Flake, error) {
	resolved, err := r.ResolveAll(ctx, d.InputList())
	if err != nil {
		return nil, err
	}
	return NewFlake(d, resolved)
}

func NewFlake(d *Descriptor, resolved []inputs.Resolved) (*Flake, error) {
	systems, err := d.Platforms()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	hash, err := d.Hash()
	if err != nil {
		return nil, err
	}

	f := &Flake{
		Descriptor: d,
		Inputs:     slices.Clone(resolved),
		Systems:    systems,
		hash:       hash,
		byName:     make(map[string]inputs.Resolved, len(resolved)),
	}

	for _, r := range resolved {
		f.byName[r.Name] = r
	}

	for name := range d.Inputs {
		if _, ok := f.byName[name]; !ok {
			return nil, &inputs.UnresolvedInputError{Input: name, Locator: d.Inputs[name], Err: fmt.Errorf("missing from the resolved set")}
		}
	}

	// one list, shared by the package and the shell of every platform
	f.nativeDeps = set.From(packageNames(d.Package.NativeDeps)...).List()
	f.devTools = set.From(packageNames(d.DevShell.Tools)...).List()

	f.source = d.SourceDir()

	return f, nil
}

func (f *Flake) Input(name string) (inputs.Resolved, bool) {
	r, ok := f.byName[name]
	return r, ok
}

// Lock returns the lock file pinning exactly the flake's inputs
func (f *Flake) Lock() *inputs.LockFile {
	return inputs.LockFromResolved(f.Inputs)
}

func (f *Flake) checkPlatform(p platform.Platform) error {
	if !slices.Contains(f.Systems, p) {
		return fmt.Errorf("%w: %s is not one of %v", ErrUnsupportedPlatform, p, f.Systems)
	}
	return nil
}

// indexRef addresses the package index instantiated for p
func (f *Flake) indexRef(p platform.Platform) string {
	return fmt.Sprintf("%s#legacyPackages.%s", f.byName[PackageIndexInput].LockedRef(), p)
}

func (f *Flake) builderRef() string {
	if r, ok := f.byName[BuilderInput]; ok {
		return r.LockedRef()
	}
	return ""
}

// BuildPackage derives the default package for p
func (f *Flake) BuildPackage(p platform.Platform) (BuildOutput, error) {
	if err := f.checkPlatform(p); err != nil {
		return BuildOutput{}, err
	}

	return BuildOutput{
		Platform:   p,
		Source:     f.source,
		NativeDeps: slices.Clone(f.nativeDeps),
		Builder:    f.builderRef(),
		Index:      f.indexRef(p),
	}, nil
}

// DevShell derives the development shell for p
func (f *Flake) DevShell(p platform.Platform) (ShellOutput, error) {
	if err := f.checkPlatform(p); err != nil {
		return ShellOutput{}, err
	}

	index := f.indexRef(p)
	scope := envScope{
		PackageRef: func(attr string) string { return index + "." + attr },
		System:     p.String(),
		Source:     f.source,
	}

	env := make([]EnvBinding, 0, len(f.Descriptor.DevShell.Env))
	for _, name := range slices.Sorted(maps.Keys(f.Descriptor.DevShell.Env)) {
		value, err := expandEnv(f.Descriptor.DevShell.Env[name], scope)
		if err != nil {
			return ShellOutput{}, fmt.Errorf("%w: env %s: %w", ErrInvalidDescriptor, name, err)
		}
		env = append(env, EnvBinding{Name: name, Value: value})
	}

	return ShellOutput{
		Platform:   p,
		NativeDeps: slices.Clone(f.nativeDeps),
		DevTools:   slices.Clone(f.devTools),
		Env:        env,
		Index:      index,
	}, nil
}

// Outputs derives the package and shell pair for p
func (f *Flake) Outputs(p platform.Platform) (Outputs, error) {
	pkg, err := f.BuildPackage(p)
	if err != nil {
		return Outputs{}, err
	}

	shell, err := f.DevShell(p)
	if err != nil {
		return Outputs{}, err
	}

	return Outputs{DefaultPackage: pkg, DevShell: shell}, nil
}

// Result pairs an output record with the error deriving it, if any
type Result struct {
	Outputs Outputs
	Err     error
}

// ForEachSupportedPlatform lazily derives the outputs of every supported system, in declaration order.
// Each range over the sequence derives the records again.
func (f *Flake) ForEachSupportedPlatform() iter.Seq2[platform.Platform, Result] {
	return platform.ForEach(f.Systems, func(p platform.Platform) Result {
		out, err := f.Outputs(p)
		return Result{Outputs: out, Err: err}
	})
}

// Evaluate derives the outputs of every supported system in parallel.
// A single failure discards all outputs.
func (f *Flake) Evaluate(ctx context.Context) (map[platform.Platform]Outputs, error) {
	var mu sync.Mutex
	result := make(map[platform.Platform]Outputs, len(f.Systems))

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range f.Systems {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, err := f.Outputs(p)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", p, err)
			}

			mu.Lock()
			result[p] = out
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("evaluated flake", "systems", len(result), "hash", f.hash)
	return result, nil
}
