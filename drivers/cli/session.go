// Package cli is the interactive CLI transport: a goexpect session over
// telnet or SSH with literal prompt matching.
package cli

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	expect "github.com/google/goexpect"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the per-expect timeout of a session.
const DefaultTimeout = 25 * time.Second

// Session implements types.CLISession over goexpect.
type Session struct {
	exp     *expect.GExpect
	timeout time.Duration
	log     *logrus.Entry

	// onClose releases resources the expecter does not own (the SSH client)
	onClose func() error

	mu     sync.Mutex
	before []string
	closed bool
}

var _ types.CLISession = (*Session)(nil)

// genericSession spawns a session over an arbitrary byte stream. closeFn
// releases the underlying connection and must unblock pending reads.
func genericSession(r io.Reader, w io.WriteCloser, closeFn func() error, timeout time.Duration, log *logrus.Entry) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	done := make(chan struct{})
	var once sync.Once
	shutdown := func() error {
		var err error
		once.Do(func() {
			err = closeFn()
			close(done)
		})
		return err
	}

	exp, _, err := expect.SpawnGeneric(&expect.GenOptions{
		In:  w,
		Out: r,
		Wait: func() error {
			<-done
			return nil
		},
		Close: shutdown,
		Check: func() bool { return true },
	}, timeout, expect.Verbose(false), expect.CheckDuration(100*time.Millisecond))
	if err != nil {
		_ = shutdown()
		return nil, types.Wrap(types.KindConnection, err, "cli: spawn session")
	}
	return newSession(exp, timeout, log), nil
}

func newSession(exp *expect.GExpect, timeout time.Duration, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{exp: exp, timeout: timeout, log: log}
}

// Expect waits for the first of literals to appear and returns its index.
func (s *Session) Expect(ctx context.Context, literals ...string) (int, error) {
	if len(literals) == 0 {
		return -1, types.Errorf(types.KindValidation, "cli: expect needs at least one prompt")
	}
	if err := ctx.Err(); err != nil {
		return -1, types.Wrap(types.KindTimeout, err, "cli: expect %q", literals)
	}

	cases := make([]expect.Caser, len(literals))
	patterns := make([]*regexp.Regexp, len(literals))
	for i, lit := range literals {
		patterns[i] = regexp.MustCompile(regexp.QuoteMeta(lit))
		cases[i] = &expect.Case{R: patterns[i]}
	}

	out, _, idx, err := s.exp.ExpectSwitchCase(cases, s.timeoutFor(ctx))
	if err != nil {
		return -1, expectError(err, literals)
	}
	if idx < 0 || idx >= len(patterns) {
		return -1, types.Errorf(types.KindConsole, "cli: matched unknown case %d", idx)
	}

	before := out
	if loc := patterns[idx].FindStringIndex(out); loc != nil {
		before = out[:loc[0]]
	}
	s.mu.Lock()
	s.before = splitLines(before)
	s.mu.Unlock()
	return idx, nil
}

// expectError classifies a failed wait. goexpect reports timer expiry as
// expect.TimeoutError; anything else means the stream broke.
func expectError(err error, literals []string) error {
	var te expect.TimeoutError
	if errors.As(err, &te) {
		return types.Wrap(types.KindTimeout, err, "cli: waiting for %q", literals)
	}
	return types.Wrap(types.KindConnection, err, "cli: waiting for %q", literals)
}

// Send writes one line.
func (s *Session) Send(line string) error {
	s.log.WithField("line", line).Debug("cli send")
	if err := s.exp.Send(line + "\n"); err != nil {
		return types.Wrap(types.KindConnection, err, "cli: send")
	}
	return nil
}

// DoCmd sends line and waits for one of prompts.
func (s *Session) DoCmd(ctx context.Context, line string, prompts ...string) (int, error) {
	if err := s.Send(line); err != nil {
		return -1, err
	}
	idx, err := s.Expect(ctx, prompts...)
	if err != nil {
		return -1, types.Wrap(types.KindConsole, err, "cli: %q", line)
	}
	return idx, nil
}

// LinesBefore returns the output captured before the most recent match.
func (s *Session) LinesBefore() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.before...)
}

// Close terminates the session. Calling it twice is safe.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return closeAll(s.exp.Close, s.onClose)
}

func (s *Session) timeoutFor(ctx context.Context) time.Duration {
	t := s.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < t {
			t = left
		}
	}
	if t <= 0 {
		t = time.Millisecond
	}
	return t
}

// splitLines splits on CRLF, tolerating bare LF.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
