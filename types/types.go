// Package types contains the shared result types for mailscrub.
// This package does not import anything from other mailscrub packages
// to avoid circular imports.
package types

// Status classifies a validation outcome. The string values are part of
// the export format and must not change.
type Status = string

const (
	StatusValid   Status = "Valid"
	StatusInvalid Status = "Invalid"
	StatusError   Status = "Error"
)

// Outcome is the terminal result for one candidate address. Exactly one
// Outcome is produced per candidate and it is never revised.
//
// Reason is empty if and only if Status is StatusValid. Domain is empty
// only when the raw input contained no "@".
type Outcome struct {
	Email  string `json:"email"`
	Domain string `json:"domain"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}
