package reducer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/andy-wilson/gatekeeper/internal/command"
)

// ErrApprovalBeforeUpdate is returned when an Approval event is processed
// before any Update has established a current_hash.
var ErrApprovalBeforeUpdate = fmt.Errorf("approval observed before any update")

// Warn is called for non-fatal conditions encountered during the fold
// (unrecognized command tokens, a vote before any known commit, an rfc with
// no target user). It is an effect channel only: the reducer's
// output never depends on whether Warn is set.
type Warn func(format string, args ...any)

var (
	voteRe  = regexp.MustCompile(`^(\\?\+|-)?[0-9]$`)
	labelRe = regexp.MustCompile(`^(\\?\+|-)([a-zA-Z]*)$`)
)

const willRevoteToken = `will\_revote`

// Reduce folds activity, in chronological (oldest-first) order, into a
// PullRequestState for pr. warn may be nil.
func Reduce(pr PullRequest, activity []ActivityItem, urls URLs, warn Warn) (*PullRequestState, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}

	state := newState(pr, urls)

	for _, item := range activity {
		switch ev := item.(type) {
		case Update:
			applyUpdate(state, ev)
		case Approval:
			if err := applyApproval(state, ev); err != nil {
				return nil, err
			}
		case Comment:
			if err := applyComment(state, ev, warn); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("reducer: unhandled activity item type %T", item)
		}
	}

	return state, nil
}

func applyUpdate(state *PullRequestState, ev Update) {
	h := ev.SourceCommitHash
	state.CurrentHash = &h

	for user, status := range state.ReviewStatus {
		if v, ok := status.(Voted); ok {
			state.ReviewStatus[user] = VoteNeedReevaluation{Voted: v.Vote, VoteHash: v.VoteHash}
		}
	}
}

func applyApproval(state *PullRequestState, ev Approval) error {
	if state.CurrentHash == nil {
		return ErrApprovalBeforeUpdate
	}
	state.ReviewStatus[ev.UserUsername] = Voted{Vote: 1, VoteHash: *state.CurrentHash}
	return nil
}

func applyComment(state *PullRequestState, ev Comment, warn Warn) error {
	// RFC answering sweep runs for replies and top-level comments alike.
	for user, status := range state.ReviewStatus {
		if rfc, ok := status.(RFC); ok && rfc.User == ev.UserUsername {
			state.ReviewStatus[user] = RFCAnswered{User: ev.UserUsername}
		}
	}

	if ev.Parent != nil {
		return nil
	}

	if _, exists := state.ReviewStatus[ev.UserUsername]; !exists {
		state.ReviewStatus[ev.UserUsername] = NoReview{}
	}

	cmds := command.Parse(ev.UserUsername, ev.ContentRaw)
	return applyCommands(state, ev.UserUsername, cmds, warn)
}

func applyCommands(state *PullRequestState, user string, cmds []command.Command, warn Warn) error {
	for i := 0; i < len(cmds); i++ {
		tok := cmds[i].Command

		switch {
		case voteRe.MatchString(tok):
			if state.CurrentHash == nil {
				warn("vote %q from %s before any known commit; ignoring", tok, user)
				continue
			}
			v, err := strconv.Atoi(strings.TrimPrefix(tok, `\`))
			if err != nil {
				return fmt.Errorf("reducer: malformed vote token %q from %s: %w", tok, user, err)
			}
			state.ReviewStatus[user] = Voted{Vote: v, VoteHash: *state.CurrentHash}

		case tok == "rfc":
			if i+1 >= len(cmds) {
				warn("rfc from %s with no target user; ignoring", user)
				continue
			}
			i++
			target := cmds[i].Command
			state.ReviewStatus[user] = RFC{User: target}

		case tok == willRevoteToken:
			state.ReviewStatus[user] = WantsToReviewAgain{Voted: priorVote(state.ReviewStatus[user])}

		case labelRe.MatchString(tok):
			m := labelRe.FindStringSubmatch(tok)
			sign, label := m[1], m[2]
			applyLabel(state, sign, label)

		default:
			warn("unrecognized command token %q from %s", tok, user)
		}
	}
	return nil
}

// priorVote extracts the vote value to carry into a WantsToReviewAgain
// transition, per the status the reviewer held before the will_revote
// command.
func priorVote(status ReviewStatus) *int {
	switch s := status.(type) {
	case WantsToReviewAgain:
		return s.Voted
	case Voted:
		v := s.Vote
		return &v
	case VoteNeedReevaluation:
		v := s.Voted
		return &v
	default:
		return nil
	}
}

func applyLabel(state *PullRequestState, sign, label string) {
	switch sign {
	case "+", `\+`:
		state.Labels[label] = struct{}{}
	case "-":
		delete(state.Labels, label)
	}
}
