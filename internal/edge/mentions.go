package edge

import "regexp"

// mentionPattern matches @login tokens in free text. The @ must not be
// preceded by a word character, so email-like strings (user@host) are not
// mentions. Logins may contain word characters and "/" (team mentions).
var mentionPattern = regexp.MustCompile(`(?:^|[^0-9A-Za-z_])@([0-9A-Za-z_/]+)`)

// Mentions returns every @-mentioned login in text, in order of appearance.
// Duplicates are kept; de-duplication, when wanted, belongs to the sink.
func Mentions(text string) []string {
	if text == "" {
		return nil
	}
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	logins := make([]string, 0, len(matches))
	for _, m := range matches {
		logins = append(logins, m[1])
	}
	return logins
}
