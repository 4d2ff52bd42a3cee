package inputs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Input is a named external dependency, as written in the descriptor
type Input struct {
	Name    string `json:"name" yaml:"name"`
	Locator string `json:"locator" yaml:"locator"`
}

// Revision is what a Fetcher learns about a ref
type Revision struct {
	Rev          string
	LastModified time.Time
}

// Resolved is an Input pinned to an exact revision
type Resolved struct {
	Name         string    `json:"name" yaml:"name"`
	Locator      string    `json:"locator" yaml:"locator"`
	Rev          string    `json:"rev" yaml:"rev"`
	LastModified time.Time `json:"lastModified,omitzero" yaml:"lastModified,omitempty"`
}

// ShortRev returns the first 7 characters of the revision
func (r Resolved) ShortRev() string {
	if len(r.Rev) < 7 {
		return r.Rev
	}
	return r.Rev[:7]
}

// LockedRef is the locator rewritten to address exactly Rev
func (r Resolved) LockedRef() string {
	loc, err := ParseLocator(r.Locator)
	if err != nil {
		return r.Locator
	}

	if loc.Kind == GitHubKind {
		return fmt.Sprintf("github:%s/%s/%s", loc.Owner, loc.Repo, r.Rev)
	}

	loc.Ref = ""
	loc.Rev = r.Rev
	return loc.String()
}

// Fetcher turns a locator's ref into a revision by asking the remote
type Fetcher interface {
	Fetch(ctx context.Context, loc Locator) (Revision, error)
}

// FetcherFunc adapts a plain function to a Fetcher
type FetcherFunc func(ctx context.Context, loc Locator) (Revision, error)

func (f FetcherFunc) Fetch(ctx context.Context, loc Locator) (Revision, error) {
	return f(ctx, loc)
}

// Validate checks names are present and unique, and every locator parses
func Validate(list []Input) error {
	if err := validateNames(list); err != nil {
		return err
	}
	for _, in := range list {
		if _, err := ParseLocator(in.Locator); err != nil {
			return fmt.Errorf("input %q: %w", in.Name, err)
		}
	}
	return nil
}

func validateNames(list []Input) error {
	seen := make(map[string]struct{}, len(list))
	for _, in := range list {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("input with locator %q has no name", in.Locator)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("input %q is declared more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
