package edge

import "strings"

// BotClassifier decides whether a login belongs to an automation account.
// The allowlist covers bots whose names carry no marker suffix; it is
// configuration, injected rather than hardcoded.
type BotClassifier struct {
	known map[string]struct{}
}

// NewBotClassifier builds a classifier from a list of known bot logins.
func NewBotClassifier(allowlist []string) *BotClassifier {
	known := make(map[string]struct{}, len(allowlist))
	for _, login := range allowlist {
		known[login] = struct{}{}
	}
	return &BotClassifier{known: known}
}

// IsBot reports whether the login is a known bot, ends in "[bot]" (GitHub
// App accounts), or ends in "-bot".
func (c *BotClassifier) IsBot(login string) bool {
	if _, ok := c.known[login]; ok {
		return true
	}
	if strings.HasSuffix(login, "[bot]") {
		return true
	}
	return strings.HasSuffix(login, "-bot")
}
