package devflake

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nxtcoder17/devflake/pkg/inputs"
	"github.com/nxtcoder17/devflake/pkg/platform"
)

// Workspace is a loaded descriptor together with the configuration it is evaluated under
type Workspace struct {
	Context    *Context
	Descriptor *Descriptor
	Logger     *slog.Logger
}

// LoadWorkspace loads ctx.DescriptorFile, or the nearest descriptor above ctx.PWD
func LoadWorkspace(ctx *Context) (*Workspace, error) {
	file := ctx.DescriptorFile
	if file == "" {
		var err error
		file, err = FindDescriptor(ctx.PWD)
		if err != nil {
			return nil, fmt.Errorf("%w, searched upwards from %s", err, ctx.PWD)
		}
	}

	d, err := Load(file)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Context:    ctx,
		Descriptor: d,
		Logger:     slog.Default().With("descriptor", d.File()),
	}, nil
}

func (w *Workspace) LockFilePath() string {
	return filepath.Join(w.Descriptor.Dir(), LockFileName)
}

// Resolve pins the workspace inputs, reusing and refreshing devflake.lock.
// With update set, every unpinned input is fetched again.
func (w *Workspace) Resolve(update bool) (*Flake, error) {
	lockPath := w.LockFilePath()

	lock, err := inputs.ReadLockFile(lockPath)
	if err != nil {
		return nil, err
	}

	r, err := inputs.NewResolver(inputs.ResolverOpts{
		GitHubToken: w.Context.GitHubToken,
		Timeout:     w.Context.Timeout,
		Lock:        lock,
		Update:      update,
		Offline:     w.Context.Offline,
		Logger:      w.Logger,
	})
	if err != nil {
		return nil, err
	}

	f, err := ResolveInputs(w.Context, w.Descriptor, r)
	if err != nil {
		return nil, err
	}

	if next := f.Lock(); !next.Equal(lock) {
		if err := next.Write(lockPath); err != nil {
			return nil, err
		}
		w.Logger.Info("updated lock file", "file", lockPath)
	}

	return f, nil
}

// Platform picks the system for single-platform commands: the explicit value, then DEVFLAKE_SYSTEM, then the host
func (w *Workspace) Platform(explicit string) (platform.Platform, error) {
	switch {
	case explicit != "":
		return platform.Parse(explicit)
	case w.Context.System != "":
		return platform.Parse(w.Context.System)
	default:
		return platform.Detect()
	}
}
