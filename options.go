package mailscrub

import (
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Validator. It is immutable for the lifetime of a
// run; zero-valued fields select the documented defaults.
type Options struct {
	// Timeout bounds each blocking step of a unit of work: the MX
	// lookup, the TCP connect and every SMTP command round trip.
	// Default: 10s.
	Timeout time.Duration
	// Workers is the width of the validation worker pool. Default: 5.
	Workers int
	// Port is the SMTP port probed on each mail exchanger. Default: "25".
	Port string
	// HeloHost is the fixed, non-identifying hostname announced in the
	// HELO greeting. Default: "validator.local".
	HeloHost string
	// MailFrom is the synthetic sender for the MAIL FROM handshake.
	// Default: "test@validator.local".
	MailFrom string
	// CacheMX enables a per-run MX cache so repeated domains resolve
	// once. Off by default: every candidate re-resolves independently.
	CacheMX bool
	// Logger, when non-nil, receives debug-level stage diagnostics.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 5
	}
	if o.Port == "" {
		o.Port = "25"
	}
	if o.HeloHost == "" {
		o.HeloHost = "validator.local"
	}
	if o.MailFrom == "" {
		o.MailFrom = "test@validator.local"
	}
	return o
}
