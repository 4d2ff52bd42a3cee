package inputs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const resolverCacheSize = 128

// Resolver pins inputs to revisions.
//
// Order of preference for every input: a revision written in the locator,
// then a matching lock file entry (unless Update is set), then the remote.
type Resolver struct {
	Fetchers map[Kind]Fetcher
	Lock     *LockFile
	Update   bool
	Offline  bool
	Logger   *slog.Logger

	cache  *lru.Cache[string, Revision]
	flight singleflight.Group
}

type ResolverOpts struct {
	GitHubToken string
	Timeout     time.Duration
	Lock        *LockFile
	Update      bool
	Offline     bool
	Logger      *slog.Logger
}

func NewResolver(opts ResolverOpts) (*Resolver, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return NewResolverWithFetchers(map[Kind]Fetcher{
		GitHubKind: NewGitHubFetcher(opts.GitHubToken, opts.Timeout),
		GitKind:    GitFetcher{Timeout: opts.Timeout},
	}, opts)
}

func NewResolverWithFetchers(fetchers map[Kind]Fetcher, opts ResolverOpts) (*Resolver, error) {
	cache, err := lru.New[string, Revision](resolverCacheSize)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		Fetchers: fetchers,
		Lock:     opts.Lock,
		Update:   opts.Update,
		Offline:  opts.Offline,
		Logger:   logger,
		cache:    cache,
	}, nil
}

// Resolve pins a single input. Every failure is an *UnresolvedInputError.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Resolved, error) {
	fail := func(err error) (Resolved, error) {
		return Resolved{}, &UnresolvedInputError{Input: in.Name, Locator: in.Locator, Err: err}
	}

	loc, err := ParseLocator(in.Locator)
	if err != nil {
		return fail(err)
	}

	if loc.IsPinned() {
		r.Logger.Debug("input pinned by locator", "input", in.Name, "rev", loc.Rev)
		return Resolved{Name: in.Name, Locator: in.Locator, Rev: loc.Rev}, nil
	}

	if !r.Update {
		if locked, ok := r.Lock.Lookup(in.Name, in.Locator); ok {
			r.Logger.Debug("input pinned by lock file", "input", in.Name, "rev", locked.Rev)
			return locked, nil
		}
	}

	if r.Offline {
		return fail(ErrOffline)
	}

	key := loc.String()
	if rev, ok := r.cache.Get(key); ok {
		return Resolved{Name: in.Name, Locator: in.Locator, Rev: rev.Rev, LastModified: rev.LastModified}, nil
	}

	fetcher, ok := r.Fetchers[loc.Kind]
	if !ok {
		return fail(fmt.Errorf("no fetcher registered for %s locators", loc.Kind))
	}

	v, err, _ := r.flight.Do(key, func() (any, error) {
		if rev, ok := r.cache.Get(key); ok {
			return rev, nil
		}

		start := time.Now()
		rev, err := fetcher.Fetch(ctx, loc)
		if err != nil {
			return Revision{}, err
		}
		if !IsRevision(rev.Rev) {
			return Revision{}, fmt.Errorf("fetcher returned an invalid revision %q", rev.Rev)
		}
		r.Logger.Debug("fetched input revision", "locator", key, "rev", rev.Rev, "took", time.Since(start).String())
		r.cache.Add(key, rev)
		return rev, nil
	})
	if err != nil {
		return fail(err)
	}

	rev := v.(Revision)
	return Resolved{Name: in.Name, Locator: in.Locator, Rev: rev.Rev, LastModified: rev.LastModified}, nil
}

// ResolveAll pins every input concurrently.
// Resolution is all-or-nothing: on the first failure the rest are cancelled and nothing is returned.
func (r *Resolver) ResolveAll(ctx context.Context, list []Input) ([]Resolved, error) {
	if err := validateNames(list); err != nil {
		return nil, err
	}

	result := make([]Resolved, len(list))

	g, gctx := errgroup.WithContext(ctx)
	for i := range list {
		g.Go(func() error {
			resolved, err := r.Resolve(gctx, list[i])
			if err != nil {
				return err
			}
			result[i] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
