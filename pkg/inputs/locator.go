package inputs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type Kind string

const (
	GitHubKind Kind = "github"
	GitKind    Kind = "git"
)

var revPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsRevision reports whether s is a full 40 character commit hash
func IsRevision(s string) bool {
	return revPattern.MatchString(s)
}

// Locator addresses a repository and a ref within it.
//
//	github:<owner>/<repo>[/<ref>][?rev=<rev>]
//	git+<scheme>://<url>[?ref=<ref>][&rev=<rev>]
type Locator struct {
	Kind Kind

	// github only
	Owner string
	Repo  string

	// git only, without the "git+" prefix and query
	URL string

	Ref string
	Rev string
}

func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "github:"):
		return parseGitHubLocator(s)
	case strings.HasPrefix(s, "git+"):
		return parseGitLocator(s)
	default:
		return Locator{}, fmt.Errorf("%w: %q, must start with github: or git+", ErrInvalidLocator, s)
	}
}

func parseGitHubLocator(s string) (Locator, error) {
	body, query, _ := strings.Cut(strings.TrimPrefix(s, "github:"), "?")

	parts := strings.Split(body, "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Locator{}, fmt.Errorf("%w: %q, expected github:<owner>/<repo>[/<ref>]", ErrInvalidLocator, s)
	}

	loc := Locator{Kind: GitHubKind, Owner: parts[0], Repo: parts[1]}

	if len(parts) == 3 {
		if parts[2] == "" {
			return Locator{}, fmt.Errorf("%w: %q, empty ref", ErrInvalidLocator, s)
		}
		if IsRevision(parts[2]) {
			loc.Rev = parts[2]
		} else {
			loc.Ref = parts[2]
		}
	}

	if err := loc.applyQuery(s, query); err != nil {
		return Locator{}, err
	}

	return loc, nil
}

func parseGitLocator(s string) (Locator, error) {
	raw := strings.TrimPrefix(s, "git+")

	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %q: %v", ErrInvalidLocator, s, err)
	}

	switch u.Scheme {
	case "https", "http", "ssh", "file":
	default:
		return Locator{}, fmt.Errorf("%w: %q, unsupported git scheme %q", ErrInvalidLocator, s, u.Scheme)
	}

	if u.Scheme != "file" && u.Host == "" {
		return Locator{}, fmt.Errorf("%w: %q, missing host", ErrInvalidLocator, s)
	}

	query := u.RawQuery
	u.RawQuery = ""
	u.Fragment = ""

	loc := Locator{Kind: GitKind, URL: u.String()}
	if err := loc.applyQuery(s, query); err != nil {
		return Locator{}, err
	}

	return loc, nil
}

func (l *Locator) applyQuery(s, query string) error {
	if query == "" {
		return nil
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidLocator, s, err)
	}

	if v := values.Get("ref"); v != "" {
		if l.Ref != "" {
			return fmt.Errorf("%w: %q, ref given twice", ErrInvalidLocator, s)
		}
		l.Ref = v
	}

	if v := values.Get("rev"); v != "" {
		if !IsRevision(v) {
			return fmt.Errorf("%w: %q, rev must be a 40 character commit hash", ErrInvalidLocator, s)
		}
		l.Rev = v
	}

	return nil
}

// IsPinned reports whether the locator already names an exact revision
func (l Locator) IsPinned() bool {
	return l.Rev != ""
}

func (l Locator) String() string {
	var sb strings.Builder

	query := url.Values{}

	switch l.Kind {
	case GitHubKind:
		fmt.Fprintf(&sb, "github:%s/%s", l.Owner, l.Repo)
		if l.Ref != "" {
			sb.WriteString("/" + l.Ref)
		}
	case GitKind:
		sb.WriteString("git+" + l.URL)
		if l.Ref != "" {
			query.Set("ref", l.Ref)
		}
	}

	if l.Rev != "" {
		query.Set("rev", l.Rev)
	}

	if len(query) > 0 {
		sb.WriteString("?" + query.Encode())
	}

	return sb.String()
}
