package bbapi

import (
	"encoding/json"
	"fmt"

	"github.com/andy-wilson/gatekeeper/internal/reducer"
)

// ActivityItem is the wire shape of one PR activity entry: a flat object
// carrying exactly one of "comment", "update", or "approval". The presence
// of the key selects the variant; zero or more than one present is a
// decoding error, and so is a JSON object naming none of the three.
type ActivityItem struct {
	variant reducer.ActivityItem
}

// ToReducer returns the decoded reducer.ActivityItem.
func (a ActivityItem) ToReducer() reducer.ActivityItem { return a.variant }

type wireComment struct {
	ID      uint32 `json:"id"`
	Parent  *struct {
		ID uint32 `json:"id"`
	} `json:"parent"`
	Content struct {
		Raw string `json:"raw"`
	} `json:"content"`
	User struct {
		Username string `json:"username"`
	} `json:"user"`
}

type wireUpdate struct {
	Source struct {
		Commit struct {
			Hash string `json:"hash"`
		} `json:"commit"`
	} `json:"source"`
}

type wireApproval struct {
	User struct {
		Username string `json:"username"`
	} `json:"user"`
}

// UnmarshalJSON implements the strict, untagged discriminator described in
// the wire schema: reject anything that doesn't name exactly one of
// comment/update/approval.
func (a *ActivityItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Comment  json.RawMessage `json:"comment"`
		Update   json.RawMessage `json:"update"`
		Approval json.RawMessage `json:"approval"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decoding activity item: %w", err)
	}

	present := 0
	if probe.Comment != nil {
		present++
	}
	if probe.Update != nil {
		present++
	}
	if probe.Approval != nil {
		present++
	}

	switch {
	case present == 0:
		return fmt.Errorf("decoding activity item: unknown variant (no comment/update/approval key): %s", data)
	case present > 1:
		return fmt.Errorf("decoding activity item: ambiguous variant, multiple keys present: %s", data)
	}

	switch {
	case probe.Comment != nil:
		var c wireComment
		if err := json.Unmarshal(probe.Comment, &c); err != nil {
			return fmt.Errorf("decoding comment activity: %w", err)
		}
		var parent *uint32
		if c.Parent != nil {
			id := c.Parent.ID
			parent = &id
		}
		a.variant = reducer.Comment{
			ID:           c.ID,
			Parent:       parent,
			ContentRaw:   c.Content.Raw,
			UserUsername: c.User.Username,
		}

	case probe.Update != nil:
		var u wireUpdate
		if err := json.Unmarshal(probe.Update, &u); err != nil {
			return fmt.Errorf("decoding update activity: %w", err)
		}
		a.variant = reducer.Update{SourceCommitHash: u.Source.Commit.Hash}

	case probe.Approval != nil:
		var ap wireApproval
		if err := json.Unmarshal(probe.Approval, &ap); err != nil {
			return fmt.Errorf("decoding approval activity: %w", err)
		}
		a.variant = reducer.Approval{UserUsername: ap.User.Username}
	}

	return nil
}
