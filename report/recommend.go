package report

import (
	"strings"

	"github.com/dataview/mailscrub/internal/levenshtein"
	"github.com/dataview/mailscrub/types"
)

// knownProviders are major mail providers used for near-miss domain
// detection. An invalid address whose domain is a small edit away from
// one of these was most likely mistyped.
var knownProviders = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk",
	"outlook.com", "hotmail.com", "live.com", "msn.com",
	"icloud.com", "me.com",
	"protonmail.com", "proton.me",
	"aol.com", "zoho.com", "mail.com",
	"gmx.com", "gmx.net", "fastmail.com",
	"yandex.com", "comcast.net",
}

// typoThreshold is the maximum edit distance treated as a likely typo.
const typoThreshold = 2

// Recommendation suggests a corrected address for an outcome whose
// domain looks like a misspelled major provider.
type Recommendation struct {
	Email      string
	Suggestion string
}

// Recommendations scans non-valid outcomes for domains within
// typoThreshold of a known provider and proposes corrected addresses.
func Recommendations(outcomes []types.Outcome) []Recommendation {
	var recs []Recommendation
	for _, o := range outcomes {
		if o.Status == types.StatusValid || o.Domain == "" {
			continue
		}
		provider := closestProvider(o.Domain)
		if provider == "" {
			continue
		}
		local := strings.TrimSuffix(o.Email, "@"+o.Domain)
		recs = append(recs, Recommendation{
			Email:      o.Email,
			Suggestion: local + "@" + provider,
		})
	}
	return recs
}

// closestProvider returns the nearest known provider within
// typoThreshold, or "" when the domain already is a provider or is too
// far from every one of them.
func closestProvider(domain string) string {
	best := typoThreshold + 1
	match := ""
	for _, p := range knownProviders {
		if domain == p {
			return ""
		}
		if d := levenshtein.Distance(domain, p); d < best {
			best = d
			match = p
		}
	}
	return match
}
