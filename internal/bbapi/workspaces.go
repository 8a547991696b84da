package bbapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Workspace is the wire shape of a Bitbucket workspace, narrowed to the
// field used to confirm the configured owner exists before spending a
// request budget walking its repositories.
type Workspace struct {
	Slug string `json:"slug"`
}

// GetWorkspace fetches metadata for a single workspace.
func (c *Client) GetWorkspace(ctx context.Context, owner string) (*Workspace, error) {
	path := fmt.Sprintf("/workspaces/%s", owner)
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching workspace %s: %w", owner, err)
	}

	var ws Workspace
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, fmt.Errorf("parsing workspace response: %w", err)
	}
	return &ws, nil
}
