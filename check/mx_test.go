package check_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dataview/mailscrub/check"
)

func TestResolver_SortsByPreference(t *testing.T) {
	r := check.NewResolverWithLookup(time.Second, zerolog.Nop(),
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return []*net.MX{
				{Host: "backup.example.com.", Pref: 20},
				{Host: "mx1.example.com.", Pref: 10},
				{Host: "mx2.example.com.", Pref: 10},
			}, nil
		})

	records := r.LookupMX(context.Background(), "example.com")

	assert.Equal(t, []check.MXRecord{
		{Host: "mx1.example.com", Pref: 10},
		{Host: "mx2.example.com", Pref: 10}, // tie keeps resolver order
		{Host: "backup.example.com", Pref: 20},
	}, records)
}

func TestResolver_ErrorCollapsesToEmpty(t *testing.T) {
	r := check.NewResolverWithLookup(time.Second, zerolog.Nop(),
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return nil, &net.DNSError{Err: "no such host", IsNotFound: true}
		})

	assert.Empty(t, r.LookupMX(context.Background(), "nodomain.invalid"))
}

func TestResolver_EmptyAnswer(t *testing.T) {
	r := check.NewResolverWithLookup(time.Second, zerolog.Nop(),
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return nil, nil
		})

	assert.Empty(t, r.LookupMX(context.Background(), "example.com"))
}

func TestResolver_SkipsNilAndBlankRecords(t *testing.T) {
	r := check.NewResolverWithLookup(time.Second, zerolog.Nop(),
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return []*net.MX{nil, {Host: "", Pref: 5}, {Host: "mx.example.com.", Pref: 10}}, nil
		})

	records := r.LookupMX(context.Background(), "example.com")
	assert.Equal(t, []check.MXRecord{{Host: "mx.example.com", Pref: 10}}, records)
}

func TestResolver_BoundsLookupByTimeout(t *testing.T) {
	r := check.NewResolverWithLookup(100*time.Millisecond, zerolog.Nop(),
		func(ctx context.Context, _ string) ([]*net.MX, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(100*time.Millisecond), deadline, 50*time.Millisecond)
			return nil, errors.New("timeout")
		})

	assert.Empty(t, r.LookupMX(context.Background(), "slow.example.com"))
}
