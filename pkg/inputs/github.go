package inputs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubFetcher resolves github: locators through the commits API
type GitHubFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewGitHubFetcher(token string, timeout time.Duration) *GitHubFetcher {
	return &GitHubFetcher{
		BaseURL: DefaultGitHubAPIURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

func (g *GitHubFetcher) Fetch(ctx context.Context, loc Locator) (Revision, error) {
	if loc.Kind != GitHubKind {
		return Revision{}, fmt.Errorf("github fetcher cannot resolve %s locators", loc.Kind)
	}

	ref := loc.Ref
	if ref == "" {
		ref = "HEAD"
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s", g.BaseURL, url.PathEscape(loc.Owner), url.PathEscape(loc.Repo), url.PathEscape(ref))

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Revision{}, err
	}
	r.Header.Set("Accept", "application/vnd.github+json")
	if g.Token != "" {
		r.Header.Set("Authorization", "Bearer "+g.Token)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	slog.Debug("fetching revision from github", "url", endpoint)

	resp, err := client.Do(r)
	if err != nil {
		return Revision{}, fmt.Errorf("failed to query github: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		return Revision{}, fmt.Errorf("%w: %s/%s@%s", ErrRevisionNotFound, loc.Owner, loc.Repo, ref)
	case resp.StatusCode != http.StatusOK:
		return Revision{}, fmt.Errorf("github responded with status %d", resp.StatusCode)
	}

	var result githubCommit
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Revision{}, fmt.Errorf("failed to decode github response: %w", err)
	}

	if !IsRevision(result.SHA) {
		return Revision{}, fmt.Errorf("github returned an invalid commit hash %q", result.SHA)
	}

	return Revision{Rev: result.SHA, LastModified: result.Commit.Committer.Date}, nil
}
