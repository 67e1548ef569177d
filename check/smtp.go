package check

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dataview/mailscrub/internal/smtpconv"
)

// maxProbeHosts caps how many mail exchangers a single probe will try.
const maxProbeHosts = 3

// Prober conducts the recipient probe against a domain's mail
// exchangers, in preference order. Transport failures fall through to
// the next host; a completed RCPT exchange is authoritative for the
// mailbox and ends the probe, whatever the answer. Note that this makes
// any non-550/553 reply terminal too, including 4xx codes such as
// greylisting deferrals.
type Prober struct {
	cfg smtpconv.Config
	log zerolog.Logger
}

// NewProber creates a Prober. cfg.Dial may be set to stub the network.
func NewProber(cfg smtpconv.Config, log zerolog.Logger) *Prober {
	return &Prober{cfg: cfg, log: log}
}

// Probe reports whether one of the first maxProbeHosts exchangers
// accepts RCPT TO for email. reason is empty exactly when accepted.
func (p *Prober) Probe(email string, hosts []MXRecord) (accepted bool, reason string) {
	if len(hosts) > maxProbeHosts {
		hosts = hosts[:maxProbeHosts]
	}

	for _, mx := range hosts {
		accepted, reason, done := p.probeHost(mx.Host, email)
		if done {
			return accepted, reason
		}
	}
	return false, "Could not connect to any MX server"
}

// probeHost runs the conversation against a single exchanger.
// done is false only for transport failures, which are the one case
// that justifies moving on to the next host.
func (p *Prober) probeHost(host, email string) (accepted bool, reason string, done bool) {
	s, err := smtpconv.Open(host, p.cfg)
	if err != nil {
		p.log.Debug().Str("host", host).Err(err).Msg("smtp connect failed")
		return false, "", false
	}

	if _, err := s.Hello(); err != nil {
		p.log.Debug().Str("host", host).Err(err).Msg("helo failed")
		s.Quit()
		return false, "", false
	}

	mail, err := s.Mail()
	if err != nil {
		p.log.Debug().Str("host", host).Err(err).Msg("mail from failed")
		s.Quit()
		return false, "", false
	}
	if !mail.Succeeded() {
		// A server declining the sender handshake says nothing about
		// the recipient; move on to the next exchanger.
		s.Quit()
		return false, "", false
	}

	rcpt, err := s.Rcpt(email)
	s.Quit() // the session ends here whatever the answer was
	if err != nil {
		if smtpconv.Refused(err) {
			return false, "Email rejected by server", true
		}
		p.log.Debug().Str("host", host).Err(err).Msg("rcpt to failed")
		return false, "", false
	}

	switch {
	case rcpt.Succeeded():
		return true, "", true
	case rcpt.Code == 550:
		return false, "Mailbox not found", true
	case rcpt.Code == 553:
		return false, "Invalid email format", true
	default:
		return false, fmt.Sprintf("SMTP error: %d %s", rcpt.Code, rcpt.Text), true
	}
}
