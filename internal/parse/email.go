package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Candidate is the immutable, normalized form of one raw address.
// The check/ packages receive this as parameter. It is created once
// during normalization and never mutated.
type Candidate struct {
	Raw         string // the input exactly as submitted
	Email       string // trimmed and lowercased
	Local       string // the part before the first @
	Domain      string // the part after the first @; empty if no @ present
	ASCIIDomain string // punycode form of Domain, used for DNS and SMTP
}

// Normalize trims and lowercases raw and splits it on the first "@".
// It is a pure function and never fails: a missing "@" leaves Local
// and Domain empty for the caller to classify.
func Normalize(raw string) Candidate {
	email := strings.ToLower(strings.TrimSpace(raw))

	c := Candidate{Raw: raw, Email: email}

	at := strings.Index(email, "@")
	if at < 0 {
		return c
	}
	c.Local = email[:at]
	c.Domain = email[at+1:]
	c.ASCIIDomain = toASCII(c.Domain)
	return c
}

// toASCII converts an internationalized domain to its punycode form.
// ASCII domains pass through unchanged. A domain that fails IDNA2008
// conversion is kept as-is; DNS resolution will reject it.
func toASCII(domain string) string {
	for _, r := range domain {
		if r > 127 {
			a, err := idna.Lookup.ToASCII(domain)
			if err != nil {
				return domain
			}
			return a
		}
	}
	return domain
}
