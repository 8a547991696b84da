package reducer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uptr(u uint32) *uint32 { return &u }
func iptr(i int) *int       { return &i }

func mustReduce(t *testing.T, activity []ActivityItem) *PullRequestState {
	t.Helper()
	state, err := Reduce(PullRequest{ID: 1, Title: "test"}, activity, URLs{APIURL: "api", WebURL: "web"}, nil)
	require.NoError(t, err)
	return state
}

func TestReduce_EmptyActivity(t *testing.T) {
	state := mustReduce(t, nil)
	assert.Empty(t, state.ReviewStatus)
	assert.Empty(t, state.Labels)
	assert.Nil(t, state.CurrentHash)
}

func TestReduce_ApprovalAfterPush(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "abc"},
		Approval{UserUsername: "alice"},
	})

	require.NotNil(t, state.CurrentHash)
	assert.Equal(t, "abc", *state.CurrentHash)
	assert.Equal(t, Voted{Vote: 1, VoteHash: "abc"}, state.ReviewStatus["alice"])
}

func TestReduce_VoteInvalidatedByLaterPush(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "abc"},
		Comment{ID: 1, UserUsername: "bob", ContentRaw: "!g +1"},
		Update{SourceCommitHash: "def"},
	})

	assert.Equal(t, VoteNeedReevaluation{Voted: 1, VoteHash: "abc"}, state.ReviewStatus["bob"])
	require.NotNil(t, state.CurrentHash)
	assert.Equal(t, "def", *state.CurrentHash)
}

func TestReduce_RFCAnswered(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "abc"},
		Comment{ID: 1, UserUsername: "alice", ContentRaw: "!g rfc bob"},
		Comment{ID: 2, UserUsername: "bob", ContentRaw: "looks good"},
	})

	assert.Equal(t, RFCAnswered{User: "bob"}, state.ReviewStatus["alice"])
	assert.Equal(t, NoReview{}, state.ReviewStatus["bob"])
}

func TestReduce_LabelToggling(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Comment{ID: 1, UserUsername: "alice", ContentRaw: "!g +urgent +urgent -urgent +ready"},
	})

	assert.Equal(t, map[string]struct{}{"ready": {}}, state.Labels)
	assert.Equal(t, NoReview{}, state.ReviewStatus["alice"])
}

func TestReduce_EscapedVoteForm(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "h"},
		Comment{ID: 1, UserUsername: "carol", ContentRaw: `!g \+1`},
	})

	assert.Equal(t, Voted{Vote: 1, VoteHash: "h"}, state.ReviewStatus["carol"])
}

func TestReduce_WillRevotePreservesPriorVote(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "h"},
		Comment{ID: 1, UserUsername: "dave", ContentRaw: "!g -1"},
		Comment{ID: 2, UserUsername: "dave", ContentRaw: `!g will\_revote`},
	})

	assert.Equal(t, WantsToReviewAgain{Voted: iptr(-1)}, state.ReviewStatus["dave"])
}

func TestReduce_ApprovalWithNoPriorUpdateErrors(t *testing.T) {
	_, err := Reduce(PullRequest{ID: 1}, []ActivityItem{
		Approval{UserUsername: "alice"},
	}, URLs{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrApprovalBeforeUpdate)
}

func TestReduce_RFCWithNoFollowingTokenIsNoop(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Comment{ID: 1, UserUsername: "alice", ContentRaw: "!g rfc"},
	})

	assert.Equal(t, NoReview{}, state.ReviewStatus["alice"])
}

func TestReduce_ReplyNeverCreatesNewEntry(t *testing.T) {
	parent := uptr(1)
	state := mustReduce(t, []ActivityItem{
		Comment{ID: 2, Parent: parent, UserUsername: "erin", ContentRaw: "!g +1"},
	})

	assert.NotContains(t, state.ReviewStatus, "erin")
}

func TestReduce_UnrecognizedTokenWarns(t *testing.T) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, format)
	}

	state, err := Reduce(PullRequest{ID: 1}, []ActivityItem{
		Comment{ID: 1, UserUsername: "alice", ContentRaw: "!g bogus_token"},
	}, URLs{}, warn)

	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, NoReview{}, state.ReviewStatus["alice"])
}

func TestReduce_Deterministic(t *testing.T) {
	activity := []ActivityItem{
		Update{SourceCommitHash: "abc"},
		Comment{ID: 1, UserUsername: "alice", ContentRaw: "!g +1 +ready"},
	}

	s1, err := Reduce(PullRequest{ID: 7}, activity, URLs{}, nil)
	require.NoError(t, err)
	s2, err := Reduce(PullRequest{ID: 7}, activity, URLs{}, nil)
	require.NoError(t, err)

	assert.Equal(t, s1.ReviewStatus, s2.ReviewStatus)
	assert.Equal(t, s1.Labels, s2.Labels)
	assert.Equal(t, s1.CurrentHash, s2.CurrentHash)
}

func TestReduce_CurrentHashIsLastUpdate(t *testing.T) {
	state := mustReduce(t, []ActivityItem{
		Update{SourceCommitHash: "one"},
		Update{SourceCommitHash: "two"},
		Update{SourceCommitHash: "three"},
	})

	require.NotNil(t, state.CurrentHash)
	assert.Equal(t, "three", *state.CurrentHash)
}
