package bbapi

import (
	"context"
	"fmt"

	"github.com/andy-wilson/gatekeeper/internal/reducer"
)

// PullRequest is the wire shape of a Bitbucket pull request, narrowed to
// the fields this repository consumes. Unknown sibling fields are ignored.
type PullRequest struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Links  struct {
		Self     Href `json:"self"`
		Activity Href `json:"activity"`
		HTML     Href `json:"html"`
	} `json:"links"`
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
}

// Href is a single hypermedia link.
type Href struct {
	Href string `json:"href"`
}

// ToReducer converts the wire shape to the reducer's PullRequest.
func (pr PullRequest) ToReducer() reducer.PullRequest {
	return reducer.PullRequest{
		ID:             pr.ID,
		Title:          pr.Title,
		State:          pr.State,
		AuthorUsername: pr.Author.Username,
		SelfURL:        pr.Links.Self.Href,
		ActivityURL:    pr.Links.Activity.Href,
		HTMLURL:        pr.Links.HTML.Href,
	}
}

// GetPullRequests fetches every open pull request for a repository.
func (c *Client) GetPullRequests(ctx context.Context, owner, repoSlug string) ([]PullRequest, error) {
	path := fmt.Sprintf("/repositories/%s/%s/pullrequests", owner, repoSlug)
	prs, err := getAllPages[PullRequest](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("fetching pull requests for %s/%s: %w", owner, repoSlug, err)
	}
	return prs, nil
}

// GetPullRequestActivity fetches the entire activity timeline for a pull
// request, given the absolute activity URL from its links.
func (c *Client) GetPullRequestActivity(ctx context.Context, activityURL string) ([]ActivityItem, error) {
	items, err := pagerFetchActivity(ctx, c, activityURL)
	if err != nil {
		return nil, fmt.Errorf("fetching activity at %s: %w", activityURL, err)
	}
	return items, nil
}

func pagerFetchActivity(ctx context.Context, c *Client, url string) ([]ActivityItem, error) {
	return getAllPagesFromURL[ActivityItem](ctx, c, url)
}
