// Package report renders orchestrator results as the human-readable
// per-repository summary and, optionally, a structured JSON artifact of
// the same run.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andy-wilson/gatekeeper/internal/orchestrator"
	"github.com/andy-wilson/gatekeeper/internal/reducer"
)

// WriteText renders results to w: for each repository a header line and a
// rule, then for each pull request a block with its id, title, author, web
// link, current commit hash (if any), label set (if any), and one line per
// reviewer giving the textual form of their review status.
func WriteText(w io.Writer, results []orchestrator.RepoResult) error {
	for _, repo := range results {
		if err := writeRepo(w, repo); err != nil {
			return err
		}
	}
	return nil
}

func writeRepo(w io.Writer, repo orchestrator.RepoResult) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", repo.Slug, strings.Repeat("-", len(repo.Slug))); err != nil {
		return err
	}

	if repo.Err != nil {
		_, err := fmt.Fprintf(w, "  failed to fetch pull requests: %v\n\n", repo.Err)
		return err
	}

	if len(repo.PRs) == 0 {
		_, err := fmt.Fprintf(w, "  no open pull requests\n\n")
		return err
	}

	for _, pr := range repo.PRs {
		if err := writePR(w, pr); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

func writePR(w io.Writer, pr orchestrator.PRResult) error {
	if pr.Err != nil {
		_, err := fmt.Fprintf(w, "  #%d %s: failed: %v\n", pr.PR.ID, pr.PR.Title, pr.Err)
		return err
	}

	state := pr.State
	if _, err := fmt.Fprintf(w, "  #%d %s (%s)\n", state.PR.ID, state.PR.Title, state.PR.AuthorUsername); err != nil {
		return err
	}
	if state.URLs.WebURL != "" {
		if _, err := fmt.Fprintf(w, "    %s\n", state.URLs.WebURL); err != nil {
			return err
		}
	}
	if state.CurrentHash != nil {
		if _, err := fmt.Fprintf(w, "    current commit: %s\n", *state.CurrentHash); err != nil {
			return err
		}
	}
	if len(state.Labels) > 0 {
		if _, err := fmt.Fprintf(w, "    labels: %s\n", strings.Join(sortedKeys(state.Labels), ", ")); err != nil {
			return err
		}
	}

	for _, user := range sortedReviewers(state.ReviewStatus) {
		if _, err := fmt.Fprintf(w, "    %s: %s\n", user, StatusText(state.ReviewStatus[user])); err != nil {
			return err
		}
	}

	return nil
}

// StatusText renders a ReviewStatus for human consumption.
func StatusText(status reducer.ReviewStatus) string {
	switch s := status.(type) {
	case reducer.NoReview:
		return "no review"
	case reducer.Voted:
		return fmt.Sprintf("voted %+d (at %s)", s.Vote, s.VoteHash)
	case reducer.VoteNeedReevaluation:
		return fmt.Sprintf("vote %+d needs re-evaluation (cast at %s)", s.Voted, s.VoteHash)
	case reducer.WantsToReviewAgain:
		if s.Voted != nil {
			return fmt.Sprintf("wants to review again (previously voted %+d)", *s.Voted)
		}
		return "wants to review again"
	case reducer.RFC:
		return fmt.Sprintf("waiting on %s", s.User)
	case reducer.RFCAnswered:
		return fmt.Sprintf("%s answered", s.User)
	default:
		return "unknown review status"
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedReviewers(statuses map[string]reducer.ReviewStatus) []string {
	keys := make([]string, 0, len(statuses))
	for k := range statuses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
