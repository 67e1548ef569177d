package check_test

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dataview/mailscrub/check"
	"github.com/dataview/mailscrub/internal/smtpconv"
)

// script is the canned reply set of one fake mail exchanger.
type script map[string]string

// acceptingScript answers every command positively.
func acceptingScript() script {
	return script{"HELO": "250 OK", "MAIL": "250 OK", "RCPT": "250 OK"}
}

func serveScript(conn net.Conn, s script) {
	defer func() { _ = conn.Close() }()

	_, _ = fmt.Fprintf(conn, "220 mx ESMTP\r\n")
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])
		if strings.HasPrefix(cmd, "QUIT") {
			_, _ = fmt.Fprintf(conn, "221 Bye\r\n")
			return
		}
		for prefix, resp := range s {
			if strings.HasPrefix(cmd, prefix) {
				_, _ = fmt.Fprintf(conn, "%s\r\n", resp)
				break
			}
		}
	}
}

// hostDialer routes dials to per-host scripts and records dial order.
// A host with no script refuses the connection.
type hostDialer struct {
	mu      sync.Mutex
	scripts map[string]script
	dialed  []string
}

func (d *hostDialer) dial(_, address string, _ time.Duration) (net.Conn, error) {
	host, _, _ := net.SplitHostPort(address)

	d.mu.Lock()
	d.dialed = append(d.dialed, host)
	s, ok := d.scripts[host]
	d.mu.Unlock()

	if !ok {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	go serveScript(server, s)
	return client, nil
}

func newProber(d *hostDialer) *check.Prober {
	return check.NewProber(smtpconv.Config{
		HeloHost: "validator.local",
		MailFrom: "test@validator.local",
		Port:     "25",
		Timeout:  2 * time.Second,
		Dial:     d.dial,
	}, zerolog.Nop())
}

func mxList(hosts ...string) []check.MXRecord {
	records := make([]check.MXRecord, len(hosts))
	for i, h := range hosts {
		records[i] = check.MXRecord{Host: h, Pref: uint16(10 * (i + 1))}
	}
	return records
}

func TestProbe_Accepted(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{"mx1": acceptingScript()}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1"))

	assert.True(t, accepted)
	assert.Empty(t, reason)
}

func TestProbe_MailboxNotFoundIsTerminal(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{
		"mx1": {"HELO": "250 OK", "MAIL": "250 OK", "RCPT": "550 User unknown"},
		"mx2": acceptingScript(),
	}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1", "mx2"))

	assert.False(t, accepted)
	assert.Equal(t, "Mailbox not found", reason)
	// The completed RCPT answer is authoritative: mx2 must not be tried.
	assert.Equal(t, []string{"mx1"}, d.dialed)
}

func TestProbe_InvalidMailboxSyntax(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{
		"mx1": {"HELO": "250 OK", "MAIL": "250 OK", "RCPT": "553 Bad mailbox name"},
	}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1"))

	assert.False(t, accepted)
	assert.Equal(t, "Invalid email format", reason)
}

func TestProbe_OtherReplyIsTerminal(t *testing.T) {
	// Even a 4xx deferral ends the probe once RCPT completed.
	d := &hostDialer{scripts: map[string]script{
		"mx1": {"HELO": "250 OK", "MAIL": "250 OK", "RCPT": "451 Greylisted, try later"},
		"mx2": acceptingScript(),
	}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1", "mx2"))

	assert.False(t, accepted)
	assert.Contains(t, reason, "SMTP error: 451")
	assert.Contains(t, reason, "Greylisted")
	assert.Equal(t, []string{"mx1"}, d.dialed)
}

// resetAfterRcpt simulates a peer that tears the connection down with a
// reset once RCPT TO is on the wire.
type resetAfterRcpt struct {
	net.Conn
	mu    sync.Mutex
	reset bool
}

func (c *resetAfterRcpt) Write(p []byte) (int, error) {
	if bytes.HasPrefix(p, []byte("RCPT")) {
		c.mu.Lock()
		c.reset = true
		c.mu.Unlock()
	}
	return c.Conn.Write(p)
}

func (c *resetAfterRcpt) Read(p []byte) (int, error) {
	c.mu.Lock()
	reset := c.reset
	c.mu.Unlock()
	if reset {
		return 0, &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
	}
	return c.Conn.Read(p)
}

func TestProbe_ConnectionResetDuringRcptIsTerminal(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{
		"mx1": {"HELO": "250 OK", "MAIL": "250 OK"},
		"mx2": acceptingScript(),
	}}
	resettingDial := func(network, address string, timeout time.Duration) (net.Conn, error) {
		conn, err := d.dial(network, address, timeout)
		if err != nil || !strings.HasPrefix(address, "mx1") {
			return conn, err
		}
		return &resetAfterRcpt{Conn: conn}, nil
	}
	p := check.NewProber(smtpconv.Config{
		HeloHost: "validator.local",
		MailFrom: "test@validator.local",
		Port:     "25",
		Timeout:  2 * time.Second,
		Dial:     resettingDial,
	}, zerolog.Nop())

	accepted, reason := p.Probe("user@example.com", mxList("mx1", "mx2"))

	assert.False(t, accepted)
	assert.Equal(t, "Email rejected by server", reason)
	// A hard refusal is an answer about the recipient: mx2 must not be
	// consulted.
	assert.Equal(t, []string{"mx1"}, d.dialed)
}

func TestProbe_SenderDeclinedTriesNextHost(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{
		"mx1": {"HELO": "250 OK", "MAIL": "421 Not now"},
		"mx2": acceptingScript(),
	}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1", "mx2"))

	assert.True(t, accepted)
	assert.Empty(t, reason)
	assert.Equal(t, []string{"mx1", "mx2"}, d.dialed)
}

func TestProbe_TransportFailureTriesNextHost(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{
		"mx2": acceptingScript(), // mx1 refuses the connection
	}}

	accepted, _ := newProber(d).Probe("user@example.com", mxList("mx1", "mx2"))

	assert.True(t, accepted)
	assert.Equal(t, []string{"mx1", "mx2"}, d.dialed)
}

func TestProbe_AllHostsUnreachable(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{}}

	accepted, reason := newProber(d).Probe("user@example.com", mxList("mx1", "mx2", "mx3"))

	assert.False(t, accepted)
	assert.Equal(t, "Could not connect to any MX server", reason)
}

func TestProbe_TriesAtMostThreeHosts(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{}}

	_, reason := newProber(d).Probe("user@example.com", mxList("mx1", "mx2", "mx3", "mx4", "mx5"))

	assert.Equal(t, "Could not connect to any MX server", reason)
	assert.Equal(t, []string{"mx1", "mx2", "mx3"}, d.dialed)
}

func TestProbe_NoHosts(t *testing.T) {
	d := &hostDialer{scripts: map[string]script{}}

	accepted, reason := newProber(d).Probe("user@example.com", nil)

	assert.False(t, accepted)
	assert.Equal(t, "Could not connect to any MX server", reason)
	assert.Empty(t, d.dialed)
}
