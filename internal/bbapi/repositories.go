package bbapi

import (
	"context"
	"fmt"
)

// Repository is the wire shape of a Bitbucket repository, narrowed to the
// fields needed to resolve a glob pattern against a workspace's repository
// listing (see internal/orchestrator).
type Repository struct {
	Slug string `json:"slug"`
}

// GetRepositories fetches every repository slug in a workspace.
func (c *Client) GetRepositories(ctx context.Context, owner string) ([]Repository, error) {
	path := fmt.Sprintf("/repositories/%s", owner)
	repos, err := getAllPages[Repository](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("fetching repositories for workspace %s: %w", owner, err)
	}
	return repos, nil
}
