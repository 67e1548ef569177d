package check

import (
	"regexp"

	"github.com/dataview/mailscrub/internal/parse"
)

// emailPattern mirrors the common "is this shaped like an email" check:
// a restricted local part, a restricted domain and a final label of at
// least two letters. It is deliberately narrower than the RFC grammar.
// Compiled once at init and shared read-only across all workers.
var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// Syntax reports whether the normalized candidate is well-formed.
// A candidate without an "@" is never well-formed. Internationalized
// domains are matched in their punycode form, so user@münchen.de passes
// while a malformed IDN does not.
func Syntax(c parse.Candidate) bool {
	if c.Domain == "" {
		return false
	}
	return emailPattern.MatchString(c.Local + "@" + c.ASCIIDomain)
}
