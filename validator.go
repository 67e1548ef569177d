package mailscrub

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dataview/mailscrub/check"
	"github.com/dataview/mailscrub/internal/mxcache"
	"github.com/dataview/mailscrub/internal/parse"
	"github.com/dataview/mailscrub/internal/smtpconv"
	"github.com/dataview/mailscrub/types"
)

// resolver abstracts MX resolution so the optional per-run cache can be
// layered over the plain resolver.
type resolver interface {
	LookupMX(ctx context.Context, domain string) []check.MXRecord
}

// Validator runs the full pipeline per candidate: normalization, MX
// resolution and the SMTP recipient probe. It is safe for concurrent
// use; the only state shared between units of work is the immutable
// configuration and the compiled syntax pattern.
type Validator struct {
	opts     Options
	log      zerolog.Logger
	resolver resolver
	prober   *check.Prober
}

// New creates a Validator. Zero-valued Options fields fall back to the
// defaults documented on Options.
func New(opts Options) *Validator {
	opts = opts.withDefaults()

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	var res resolver = check.NewResolver(opts.Timeout, log)
	if opts.CacheMX {
		res = mxcache.New(res)
	}

	return &Validator{
		opts:     opts,
		log:      log,
		resolver: res,
		prober: check.NewProber(smtpconv.Config{
			HeloHost: opts.HeloHost,
			MailFrom: opts.MailFrom,
			Port:     opts.Port,
			Timeout:  opts.Timeout,
		}, log),
	}
}

// Validate classifies a single address. It never returns an error:
// every failure mode is a per-address classification, never a fault.
func (v *Validator) Validate(ctx context.Context, raw string) types.Outcome {
	c := parse.Normalize(raw)

	if !strings.Contains(c.Email, "@") {
		return types.Outcome{
			Email:  c.Email,
			Status: types.StatusInvalid,
			Reason: "Invalid email format",
		}
	}
	if !check.Syntax(c) {
		return types.Outcome{
			Email:  c.Email,
			Domain: c.Domain,
			Status: types.StatusInvalid,
			Reason: "Invalid email syntax",
		}
	}

	hosts := v.resolver.LookupMX(ctx, c.ASCIIDomain)
	if len(hosts) == 0 {
		return types.Outcome{
			Email:  c.Email,
			Domain: c.Domain,
			Status: types.StatusInvalid,
			Reason: "No MX records found",
		}
	}

	accepted, reason := v.prober.Probe(c.Email, hosts)
	if !accepted {
		return types.Outcome{
			Email:  c.Email,
			Domain: c.Domain,
			Status: types.StatusInvalid,
			Reason: reason,
		}
	}
	return types.Outcome{Email: c.Email, Domain: c.Domain, Status: types.StatusValid}
}

// ValidateBatch validates every candidate concurrently and streams one
// Outcome per candidate in completion order. All candidates are
// submitted up front; Workers bounds how many are in flight at once.
// The channel is closed after exactly len(emails) outcomes: a fault
// inside a unit of work is recovered at the task boundary and reported
// as StatusError rather than lost, and never aborts sibling tasks.
// Consumers must correlate by the Email field, never by arrival order.
func (v *Validator) ValidateBatch(ctx context.Context, emails []string) <-chan types.Outcome {
	jobs := make(chan string, len(emails))
	for _, e := range emails {
		jobs <- e
	}
	close(jobs)

	out := make(chan types.Outcome)

	var wg sync.WaitGroup
	for i := 0; i < v.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				out <- v.validateRecovering(ctx, raw)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// validateRecovering converts any fault escaping a unit of work into a
// terminal Error outcome, keeping the one-outcome-per-candidate
// invariant intact.
func (v *Validator) validateRecovering(ctx context.Context, raw string) (outcome types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c := parse.Normalize(raw)
			v.log.Error().Str("email", c.Email).Interface("panic", r).Msg("validation fault")
			outcome = types.Outcome{
				Email:  c.Email,
				Domain: c.Domain,
				Status: types.StatusError,
				Reason: fmt.Sprintf("Validation error: %v", r),
			}
		}
	}()
	return v.Validate(ctx, raw)
}
