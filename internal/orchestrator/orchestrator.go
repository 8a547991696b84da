// Package orchestrator drives a single sequential pass over a set of
// repositories, fetching pull requests and their activity timelines and
// folding each one through the reducer.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/andy-wilson/gatekeeper/internal/bbapi"
	"github.com/andy-wilson/gatekeeper/internal/reducer"
)

// Logger is the subset of logging behavior the orchestrator depends on.
type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// PRResult is the outcome of reducing a single pull request's activity.
// Exactly one of State or Err is set.
type PRResult struct {
	PR    reducer.PullRequest
	State *reducer.PullRequestState
	Err   error
}

// RepoResult is the outcome of processing a single configured repository
// slug. Err is set only when the PR list itself could not be fetched; a
// per-PR failure is instead recorded in the corresponding PRResult.
type RepoResult struct {
	Slug string
	PRs  []PRResult
	Err  error
}

// Orchestrator fetches pull requests and their activity from a Bitbucket
// client and folds each one through the reducer, one repository and one
// pull request at a time.
type Orchestrator struct {
	client   *bbapi.Client
	log      Logger
	progress ProgressReporter
}

// New creates an Orchestrator bound to client. log may be nil, in which
// case debug messages and warnings surfaced through the reducer are
// discarded silently.
func New(client *bbapi.Client, log Logger) *Orchestrator {
	return &Orchestrator{client: client, log: log}
}

// WithProgress attaches a ProgressReporter notified as each repository's
// pass starts and finishes.
func (o *Orchestrator) WithProgress(p ProgressReporter) *Orchestrator {
	o.progress = p
	return o
}

func (o *Orchestrator) debug(format string, args ...interface{}) {
	if o.log != nil {
		o.log.Debug(format, args...)
	}
}

func (o *Orchestrator) warn(format string, args ...interface{}) {
	if o.log != nil {
		o.log.Warn(format, args...)
	}
}

// ResolveRepoSlugs expands the configured repo_slugs patterns into concrete
// repository slugs. When no pattern contains glob metacharacters, the
// patterns are used directly, without spending a request on the repository
// list; if any pattern contains a glob, the owner is confirmed to exist,
// then the full repository listing is fetched and every pattern, literal
// ones included, is matched against it locally.
func (o *Orchestrator) ResolveRepoSlugs(ctx context.Context, owner string, patterns []string) ([]string, error) {
	filter := NewRepoFilterWithLog(patterns, o.debug)
	if !filter.HasGlobs() {
		return filter.LiteralSlugs(), nil
	}

	if _, err := o.client.GetWorkspace(ctx, owner); err != nil {
		return nil, fmt.Errorf("confirming workspace %s exists: %w", owner, err)
	}

	repos, err := o.client.GetRepositories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetching repository list for %s: %w", owner, err)
	}

	all := make([]string, len(repos))
	for i, r := range repos {
		all[i] = r.Slug
	}

	return filter.Filter(all), nil
}

// Run fetches and reduces every pull request for every slug in repoSlugs,
// in order. A repository whose PR list cannot be fetched is recorded with
// its Err set and processing continues with the next slug. A pull request
// whose activity cannot be fetched, or whose activity fails to reduce, is
// recorded the same way within that repository's PRs without aborting the
// repository's pass.
func (o *Orchestrator) Run(ctx context.Context, owner string, repoSlugs []string) []RepoResult {
	results := make([]RepoResult, 0, len(repoSlugs))

	for _, slug := range repoSlugs {
		o.debug("fetching pull requests for %s/%s", owner, slug)
		if o.progress != nil {
			o.progress.Start(slug)
		}

		result := o.runRepo(ctx, owner, slug)
		results = append(results, result)

		if o.progress != nil {
			if result.Err != nil {
				o.progress.Fail(slug, result.Err)
			} else {
				o.progress.Complete(slug)
			}
		}
	}

	return results
}

func (o *Orchestrator) runRepo(ctx context.Context, owner, slug string) RepoResult {
	prs, err := o.client.GetPullRequests(ctx, owner, slug)
	if err != nil {
		return RepoResult{Slug: slug, Err: fmt.Errorf("fetching pull requests for %s: %w", slug, err)}
	}

	o.debug("found %d open pull requests in %s", len(prs), slug)

	prResults := make([]PRResult, 0, len(prs))
	for _, pr := range prs {
		prResults = append(prResults, o.runPR(ctx, slug, pr))
	}

	return RepoResult{Slug: slug, PRs: prResults}
}

func (o *Orchestrator) runPR(ctx context.Context, slug string, pr bbapi.PullRequest) PRResult {
	rpr := pr.ToReducer()

	activityURL := pr.Links.Activity.Href
	if activityURL == "" {
		return PRResult{PR: rpr, Err: fmt.Errorf("PR %d in %s has no activity link", pr.ID, slug)}
	}

	activity, err := o.client.GetPullRequestActivity(ctx, activityURL)
	if err != nil {
		return PRResult{PR: rpr, Err: fmt.Errorf("fetching activity for PR %d in %s: %w", pr.ID, slug, err)}
	}

	// The API returns activity newest-first; the reducer requires
	// chronological (oldest-first) order.
	chronological := make([]reducer.ActivityItem, len(activity))
	for i, a := range activity {
		chronological[len(activity)-1-i] = a.ToReducer()
	}

	warn := func(format string, args ...interface{}) {
		o.warn("PR %d in %s: "+format, append([]interface{}{pr.ID, slug}, args...)...)
	}

	urls := reducer.URLs{APIURL: rpr.SelfURL, WebURL: rpr.HTMLURL}

	state, err := reducer.Reduce(rpr, chronological, urls, warn)
	if err != nil {
		return PRResult{PR: rpr, Err: fmt.Errorf("reducing PR %d in %s: %w", pr.ID, slug, err)}
	}

	return PRResult{PR: rpr, State: state}
}
