package inputs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitFetcher resolves git+ locators with an in-memory ls-remote
type GitFetcher struct {
	// Timeout bounds a single ls-remote, zero means no limit beyond ctx
	Timeout time.Duration
}

func (g GitFetcher) Fetch(ctx context.Context, loc Locator) (Revision, error) {
	if loc.Kind != GitKind {
		return Revision{}, fmt.Errorf("git fetcher cannot resolve %s locators", loc.Kind)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{loc.URL},
	})

	slog.Debug("listing remote refs", "url", loc.URL)

	refs, err := remote.ListContext(ctx, &git.ListOptions{PeelingOption: git.AppendPeeled})
	if err != nil {
		return Revision{}, fmt.Errorf("failed to list refs of %s: %w", loc.URL, err)
	}

	rev, err := pickRef(refs, loc.Ref)
	if err != nil {
		return Revision{}, fmt.Errorf("%s: %w", loc.URL, err)
	}

	return Revision{Rev: rev}, nil
}

const peeledSuffix = "^{}"

// pickRef finds the commit a ref name points at.
// An empty name means HEAD; bare names try branches, then tags.
// Annotated tags resolve through their peeled "^{}" entry to the tagged commit.
func pickRef(refs []*plumbing.Reference, name string) (string, error) {
	byName := make(map[plumbing.ReferenceName]*plumbing.Reference, len(refs))
	for _, ref := range refs {
		byName[ref.Name()] = ref
	}

	var candidates []plumbing.ReferenceName
	switch name {
	case "", "HEAD":
		candidates = []plumbing.ReferenceName{plumbing.HEAD}
	default:
		candidates = []plumbing.ReferenceName{
			plumbing.ReferenceName(name),
			plumbing.NewBranchReferenceName(name),
			plumbing.NewTagReferenceName(name),
		}
	}

	for _, c := range candidates {
		ref, ok := byName[c]
		if !ok {
			continue
		}

		if peeled, ok := byName[c+peeledSuffix]; ok {
			ref = peeled
		}

		// HEAD is advertised as a symbolic ref when the server supports it
		for hops := 0; ref != nil && ref.Type() == plumbing.SymbolicReference && hops < 5; hops++ {
			ref = byName[ref.Target()]
		}

		if ref == nil || ref.Hash().IsZero() {
			continue
		}

		return ref.Hash().String(), nil
	}

	if name == "" {
		name = "HEAD"
	}
	return "", fmt.Errorf("%w: %s", ErrRevisionNotFound, name)
}
