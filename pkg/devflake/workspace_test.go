package devflake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nxtcoder17/devflake/pkg/inputs"
	"github.com/nxtcoder17/devflake/pkg/platform"
)

func offlineWorkspace(t *testing.T) *Workspace {
	t.Helper()
	root := t.TempDir()
	if err := Init(filepath.Join(root, "devflake.yml")); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(root, "src", "bin")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := LoadWorkspace(&Context{Context: context.Background(), PWD: nested, Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestWorkspaceResolveFromLock(t *testing.T) {
	w := offlineWorkspace(t)

	if err := inputs.LockFromResolved(resolvedFor(w.Descriptor)).Write(w.LockFilePath()); err != nil {
		t.Fatal(err)
	}

	f, err := w.Resolve(false)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range f.Inputs {
		if r.Rev != testRev {
			t.Errorf("%s: expected the locked revision, got %q", r.Name, r.Rev)
		}
	}
}

func TestWorkspaceResolveOfflineWithoutLock(t *testing.T) {
	w := offlineWorkspace(t)

	f, err := w.Resolve(false)
	if f != nil {
		t.Errorf("expected no flake")
	}
	if !errors.Is(err, inputs.ErrUnresolvedInput) || !errors.Is(err, inputs.ErrOffline) {
		t.Errorf("expected an offline UnresolvedInputError, got %v", err)
	}

	if _, err := os.Stat(w.LockFilePath()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock file should not be written on failure")
	}
}

func TestWorkspacePlatform(t *testing.T) {
	w := offlineWorkspace(t)

	p, err := w.Platform("aarch64-darwin")
	if err != nil || p != platform.Aarch64Darwin {
		t.Errorf("explicit system: got %v, %v", p, err)
	}

	w.Context.System = "x86_64-linux"
	if p, err := w.Platform(""); err != nil || p != platform.X8664Linux {
		t.Errorf("context system: got %v, %v", p, err)
	}

	if _, err := w.Platform("sparc-solaris"); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
}
