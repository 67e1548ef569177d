// Package smtpconv drives a single short SMTP conversation against one
// mail exchanger: banner, HELO, MAIL FROM, RCPT TO, QUIT. Sessions are
// single-use; every probe owns its own connection and the session is
// closed after the recipient exchange regardless of outcome.
package smtpconv

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// DialFunc opens the TCP connection. Injectable for testing.
// Defaults to net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures the SMTP conversation.
type Config struct {
	HeloHost string // hostname announced in the HELO greeting
	MailFrom string // synthetic sender for the MAIL FROM handshake
	Port     string
	Timeout  time.Duration // bounds the connect and each command round trip
	Dial     DialFunc
}

// Reply is one SMTP server reply, folded from its continuation lines.
type Reply struct {
	Code int
	Text string
}

// Succeeded reports whether the reply code is in the 2xx success class.
func (r Reply) Succeeded() bool { return r.Code/100 == 2 }

// Session is an open conversation with one mail exchanger.
type Session struct {
	cfg  Config
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// Open dials the host and consumes the server banner. The returned
// session is ready for Hello.
func Open(host string, cfg Config) (*Session, error) {
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	addr := net.JoinHostPort(host, cfg.Port)
	conn, err := cfg.Dial("tcp", addr, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	s := &Session{
		cfg:  cfg,
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}

	if err := conn.SetDeadline(time.Now().Add(cfg.Timeout)); err != nil {
		s.Quit()
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	banner, err := s.read()
	if err != nil {
		s.Quit()
		return nil, fmt.Errorf("read banner: %w", err)
	}
	if !banner.Succeeded() {
		s.Quit()
		return nil, fmt.Errorf("server refused connection: %d %s", banner.Code, banner.Text)
	}
	return s, nil
}

// Hello issues the HELO greeting with the configured client hostname.
func (s *Session) Hello() (Reply, error) {
	return s.command("HELO " + s.cfg.HeloHost)
}

// Mail issues MAIL FROM with the configured synthetic sender.
func (s *Session) Mail() (Reply, error) {
	return s.command(fmt.Sprintf("MAIL FROM:<%s>", s.cfg.MailFrom))
}

// Rcpt issues RCPT TO for the target address.
func (s *Session) Rcpt(email string) (Reply, error) {
	return s.command(fmt.Sprintf("RCPT TO:<%s>", email))
}

// Quit sends a best-effort QUIT and closes the connection. Safe to call
// on a session whose transport already failed.
func (s *Session) Quit() {
	_ = s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = s.w.WriteString("QUIT\r\n")
	_ = s.w.Flush()
	_ = s.conn.Close()
}

// command sends one SMTP command and reads the reply, bounded by the
// configured timeout.
func (s *Session) command(cmd string) (Reply, error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.cfg.Timeout)); err != nil {
		return Reply{}, fmt.Errorf("set deadline: %w", err)
	}
	if _, err := s.w.WriteString(cmd + "\r\n"); err != nil {
		return Reply{}, err
	}
	if err := s.w.Flush(); err != nil {
		return Reply{}, err
	}
	return s.read()
}

// read parses a possibly multi-line reply. Continuation lines carry a
// '-' after the three-digit code; the final line does not.
func (s *Session) read() (Reply, error) {
	var texts []string
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return Reply{}, fmt.Errorf("read reply: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return Reply{}, errors.New("short reply line")
		}
		if len(line) > 4 {
			texts = append(texts, line[4:])
		}
		if len(line) < 4 || line[3] != '-' {
			code, convErr := strconv.Atoi(line[:3])
			if convErr != nil {
				return Reply{}, fmt.Errorf("bad reply code %q: %w", line[:3], convErr)
			}
			return Reply{Code: code, Text: strings.Join(texts, " ")}, nil
		}
	}
}

// Refused reports whether err looks like the peer actively tore the
// connection down (reset or broken pipe), as opposed to a timeout or an
// unreachable host. The recipient probe treats a refusal during the
// RCPT round trip as a terminal rejection rather than a reason to try
// another exchanger.
func Refused(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
