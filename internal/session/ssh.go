package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/sszokoly/bgwmon/internal/log"
)

// DefaultTimeout bounds connection setup and each command execution.
const DefaultTimeout = 20 * time.Second

// SSHRunner executes CLI commands on a gateway over SSH, one session per
// command. It satisfies the scheduler's CommandRunner interface.
type SSHRunner struct {
	user     string
	password string
	port     int
	timeout  time.Duration
}

// NewSSHRunner returns a runner authenticating with the given login.
func NewSSHRunner(user, password string) *SSHRunner {
	return &SSHRunner{
		user:     user,
		password: password,
		port:     22,
		timeout:  DefaultTimeout,
	}
}

// Run connects to the gateway and executes every command in order. The
// result maps command string to raw output. A command that fails is
// logged and reported as empty output; the remaining commands still run.
func (r *SSHRunner) Run(ctx context.Context, lanIP string, commands []string) (map[string]string, error) {
	addr := net.JoinHostPort(lanIP, fmt.Sprintf("%d", r.port))

	config := &ssh.ClientConfig{
		User:            r.user,
		Auth:            []ssh.AuthMethod{ssh.Password(r.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.timeout,
	}

	dialer := &net.Dialer{Timeout: r.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	outputs := make(map[string]string, len(commands))
	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}

		out, err := r.exec(client, cmd)
		if err != nil {
			log.Warn("Command failed", "gateway", lanIP, "command", cmd, "error", err)
			outputs[cmd] = ""
			continue
		}
		outputs[cmd] = out
	}

	return outputs, nil
}

// exec runs one command in its own session.
func (r *SSHRunner) exec(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(cmd)
	if err != nil {
		return "", fmt.Errorf("running %q: %w", cmd, err)
	}
	return string(out), nil
}
