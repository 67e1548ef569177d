package check

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MXRecord is one mail exchanger of a domain. Pref carries the DNS
// preference explicitly so the "try the top hosts, in order" policy is
// visible to callers instead of hiding inside resolver ordering.
type MXRecord struct {
	Host string // hostname with the trailing dot stripped
	Pref uint16
}

// LookupFunc performs the raw MX query. Injectable for testability.
type LookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// Resolver looks up the mail exchangers of a domain. Every resolution
// failure (NXDOMAIN, empty answer, timeout, any other resolver error)
// collapses to an empty result because downstream handling is identical
// in all cases. The cause stays inspectable through debug logging.
type Resolver struct {
	timeout time.Duration
	lookup  LookupFunc
	log     zerolog.Logger
}

// NewResolver creates a Resolver backed by the system resolver, with
// each lookup bounded by timeout.
func NewResolver(timeout time.Duration, log zerolog.Logger) *Resolver {
	r := &net.Resolver{}
	return &Resolver{timeout: timeout, lookup: r.LookupMX, log: log}
}

// NewResolverWithLookup overrides the lookup function, for tests.
func NewResolverWithLookup(timeout time.Duration, log zerolog.Logger, fn LookupFunc) *Resolver {
	return &Resolver{timeout: timeout, lookup: fn, log: log}
}

// LookupMX returns the domain's mail exchangers ordered by preference,
// lowest value first, resolver order preserved for ties. It never
// returns an error: any failure yields an empty slice.
func (r *Resolver) LookupMX(ctx context.Context, domain string) []MXRecord {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	mxs, err := r.lookup(ctx, domain)
	if err != nil {
		r.log.Debug().Str("domain", domain).Err(err).Msg("mx lookup failed")
		return nil
	}

	records := make([]MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		if mx == nil || mx.Host == "" {
			continue
		}
		records = append(records, MXRecord{
			Host: strings.TrimSuffix(mx.Host, "."),
			Pref: mx.Pref,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})
	return records
}
