package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andy-wilson/gatekeeper/internal/orchestrator"
)

// jsonReview is the serializable form of one reviewer's status.
type jsonReview struct {
	User   string `json:"user"`
	Status string `json:"status"`
}

// jsonPR is the serializable form of one pull request's reduced state.
type jsonPR struct {
	ID          uint32       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	WebURL      string       `json:"web_url,omitempty"`
	CurrentHash string       `json:"current_hash,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Reviews     []jsonReview `json:"reviews,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// jsonRepo is the serializable form of one repository's pass.
type jsonRepo struct {
	Slug  string   `json:"slug"`
	Error string   `json:"error,omitempty"`
	PRs   []jsonPR `json:"pull_requests,omitempty"`
}

// toJSON converts orchestrator results into their serializable form.
func toJSON(results []orchestrator.RepoResult) []jsonRepo {
	out := make([]jsonRepo, 0, len(results))
	for _, repo := range results {
		jr := jsonRepo{Slug: repo.Slug}
		if repo.Err != nil {
			jr.Error = repo.Err.Error()
		}
		for _, pr := range repo.PRs {
			jr.PRs = append(jr.PRs, toJSONPR(pr))
		}
		out = append(out, jr)
	}
	return out
}

func toJSONPR(pr orchestrator.PRResult) jsonPR {
	if pr.Err != nil {
		return jsonPR{ID: pr.PR.ID, Title: pr.PR.Title, Error: pr.Err.Error()}
	}

	state := pr.State
	jp := jsonPR{
		ID:     state.PR.ID,
		Title:  state.PR.Title,
		Author: state.PR.AuthorUsername,
		WebURL: state.URLs.WebURL,
		Labels: sortedKeys(state.Labels),
	}
	if state.CurrentHash != nil {
		jp.CurrentHash = *state.CurrentHash
	}
	for _, user := range sortedReviewers(state.ReviewStatus) {
		jp.Reviews = append(jp.Reviews, jsonReview{User: user, Status: StatusText(state.ReviewStatus[user])})
	}
	return jp
}

// WriteJSON marshals results as an indented JSON document and writes it to
// path, creating parent directories as needed. This is the structured
// artifact a run may optionally leave behind; it is never read back by a
// later run.
func WriteJSON(path string, results []orchestrator.RepoResult) error {
	data, err := json.MarshalIndent(toJSON(results), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}

	return nil
}
