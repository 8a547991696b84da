// Package command parses the "!g" mini-language embedded in top-level
// pull-request comments.
package command

import "strings"

// Trigger is the token that marks a line as carrying gatekeeper commands.
const Trigger = "!g"

// Command is a single token extracted from a "!g" line, attributed to the
// comment's author. Interpretation of Command is the reducer's
// responsibility; the parser only tokenizes.
type Command struct {
	User    string
	Command string
}

// Parse splits raw into lines, and for every line whose first whitespace
// token equals Trigger, emits every remaining token on that line as a
// Command attributed to user. A comment may contain several trigger lines;
// each contributes its tokens in the order they appear.
func Parse(user, raw string) []Command {
	var out []Command

	for _, line := range strings.Split(raw, "\n") {
		tokens := strings.Fields(line)
		if len(tokens) == 0 || tokens[0] != Trigger {
			continue
		}
		for _, tok := range tokens[1:] {
			out = append(out, Command{User: user, Command: tok})
		}
	}

	return out
}
