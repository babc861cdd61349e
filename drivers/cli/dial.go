package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	expect "github.com/google/goexpect"
	"github.com/hashicorp/go-multierror"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/sirupsen/logrus"
	"github.com/ziutek/telnet"
	"golang.org/x/crypto/ssh"
)

// Transport names.
const (
	TransportTelnet = "telnet"
	TransportSSH    = "ssh"
)

// Config holds the per-session settings.
type Config struct {
	// Transport is "telnet" (default) or "ssh"
	Transport string

	// Port overrides the transport's default port
	Port int

	// Timeout is the per-expect timeout (default 25s)
	Timeout time.Duration

	// Log receives the sent lines at debug level
	Log *logrus.Entry
}

// Credentials are the login name and password of a device.
type Credentials struct {
	Username string
	Password string
}

// Dial connects to host, performs the login dialogue described by profile
// and runs its setup lines. The returned session is ready for commands.
func Dial(ctx context.Context, host string, creds Credentials, profile types.CLIProfile, cfg Config) (*Session, error) {
	if host == "" {
		return nil, types.Errorf(types.KindConfiguration, "cli: hostname is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportTelnet
	}

	var (
		sess *Session
		err  error
	)
	switch cfg.Transport {
	case TransportTelnet:
		port := cfg.Port
		if port == 0 {
			port = 23
		}
		sess, err = dialTelnet(ctx, net.JoinHostPort(host, strconv.Itoa(port)), cfg)
	case TransportSSH:
		port := cfg.Port
		if port == 0 {
			port = 22
		}
		sess, err = dialSSH(ctx, net.JoinHostPort(host, strconv.Itoa(port)), creds, cfg)
	default:
		return nil, types.Errorf(types.KindConfiguration, "cli: unknown transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	if err := Login(ctx, sess, creds, profile, cfg.Transport == TransportSSH); err != nil {
		_ = sess.Close()
		return nil, err
	}
	return sess, nil
}

func dialTelnet(ctx context.Context, addr string, cfg Config) (*Session, error) {
	timeout := cfg.Timeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	conn, err := telnet.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, types.Wrap(types.KindConnection, err, "cli: telnet %s", addr)
	}
	conn.SetUnixWriteMode(true)
	return genericSession(conn, conn, conn.Close, cfg.Timeout, cfg.Log)
}

func dialSSH(ctx context.Context, addr string, creds Credentials, cfg Config) (*Session, error) {
	// Some devices only offer keyboard-interactive authentication
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = creds.Password
		}
		return answers, nil
	})

	sshConfig := &ssh.ClientConfig{
		User: creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(creds.Password),
			keyboardInteractive,
		},
		Timeout:         cfg.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // device inventories carry no host keys
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, types.Wrap(types.KindConnection, err, "cli: ssh %s", addr)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		_ = conn.Close()
		return nil, types.Wrap(types.KindAuthFailed, err, "cli: ssh handshake %s", addr)
	}
	client := ssh.NewClient(c, chans, reqs)

	exp, _, err := expect.SpawnSSH(client, cfg.Timeout,
		expect.Verbose(false),
		expect.CheckDuration(100*time.Millisecond),
	)
	if err != nil {
		_ = client.Close()
		return nil, types.Wrap(types.KindConnection, err, "cli: spawn ssh session %s", addr)
	}
	sess := newSession(exp, cfg.Timeout, cfg.Log)
	sess.onClose = client.Close
	return sess, nil
}

// Login runs the login dialogue. With skipCredentials the transport already
// authenticated and only the ready prompt is awaited.
func Login(ctx context.Context, s types.CLISession, creds Credentials, profile types.CLIProfile, skipCredentials bool) error {
	if len(profile.Ready) == 0 {
		return types.Errorf(types.KindConfiguration, "cli: profile has no ready prompt")
	}
	askCreds := !skipCredentials && profile.UserPrompt != ""

	if askCreds {
		if creds.Username == "" {
			return types.Errorf(types.KindConfiguration, "cli: login is required")
		}
		if _, err := s.Expect(ctx, profile.UserPrompt); err != nil {
			return err
		}
		if err := s.Send(creds.Username); err != nil {
			return err
		}
		if profile.PassPrompt != "" {
			if _, err := s.Expect(ctx, profile.PassPrompt); err != nil {
				return err
			}
			if err := s.Send(creds.Password); err != nil {
				return err
			}
		}
	}

	// Rejection banners are listed first: they precede the re-prompt.
	candidates := append([]string{}, profile.Rejected...)
	if askCreds {
		candidates = append(candidates, profile.UserPrompt)
	}
	rejected := len(candidates)
	candidates = append(candidates, profile.Ready...)

	idx, err := s.Expect(ctx, candidates...)
	if err != nil {
		return err
	}
	if idx < rejected {
		return types.Errorf(types.KindAuthFailed, "cli: login rejected (%q)", candidates[idx])
	}

	for _, line := range profile.Setup {
		if _, err := s.DoCmd(ctx, line, profile.Ready...); err != nil {
			return fmt.Errorf("cli: setup %q: %w", line, err)
		}
	}
	return nil
}

// closeAll closes every closer and aggregates the failures.
func closeAll(fns ...func() error) error {
	var result *multierror.Error
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
