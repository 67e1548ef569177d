// Package mailscrub verifies that email addresses are well-formed and
// plausibly deliverable by resolving each domain's mail exchangers and
// probing them over SMTP, without sending mail. It is used to clean
// bulk address lists before a send.
//
// Single address:
//
//	v := mailscrub.New(mailscrub.Options{})
//	outcome := v.Validate(ctx, "user@example.com")
//
// Bulk, streaming outcomes in completion order:
//
//	for outcome := range v.ValidateBatch(ctx, emails) {
//	    fmt.Println(outcome.Email, outcome.Status, outcome.Reason)
//	}
package mailscrub

import "github.com/dataview/mailscrub/types"

// Outcome is a re-export from the types package so that consumers
// don't need to import the types package directly.
type Outcome = types.Outcome

// Status is a re-export.
type Status = types.Status

// Status constants re-exported.
const (
	StatusValid   = types.StatusValid
	StatusInvalid = types.StatusInvalid
	StatusError   = types.StatusError
)
