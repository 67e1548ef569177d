// Package check contains the per-stage validation components: syntax
// classification, MX resolution and the SMTP recipient probe.
package check
