package sshconn

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"vtds-application-vshasta/internal/config"
	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

type connector struct {
	cfg config.SSHConfig
}

// NewConnector builds the SSH Connector used to reach blades and nodes
// during deployment.
func NewConnector(cfg config.SSHConfig) ports.Connector {
	return &connector{cfg: cfg}
}

func (c *connector) Connect(ctx context.Context, ep domain.Endpoint) (ports.Connection, error) {
	clientConfig, err := c.clientConfig()
	if err != nil {
		return nil, err
	}

	address := c.address(ep)
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", address, err)
	}

	return &connection{client: ssh.NewClient(clientConn, chans, reqs)}, nil
}

func (c *connector) address(ep domain.Endpoint) string {
	port := ep.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(ep.Host, strconv.Itoa(port))
}

func (c *connector) clientConfig() (*ssh.ClientConfig, error) {
	if c.cfg.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	signer, err := c.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if c.cfg.InsecureSkipHostKeyCheck {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		hostKeyCallback, err = c.knownHostsCallback()
		if err != nil {
			return nil, err
		}
	}

	return &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.cfg.Timeout,
	}, nil
}

func (c *connector) signer() (ssh.Signer, error) {
	if c.cfg.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}

	privateKey, err := os.ReadFile(c.cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key '%s': %w", c.cfg.KeyPath, err)
	}
	return ssh.ParsePrivateKey(privateKey)
}

func (c *connector) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(c.cfg.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return knownhosts.New(path)
}

type connection struct {
	client *ssh.Client
}

func (c *connection) Copy(ctx context.Context, localPath, remotePath string, mode fs.FileMode) error {
	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open '%s': %w", localPath, err)
	}
	defer local.Close()

	session, err := c.client.NewSession()
	if err != nil {
		return fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	session.Stdin = local
	cmd := fmt.Sprintf("cat > %s && chmod %04o %s",
		shellEscape(remotePath), mode.Perm(), shellEscape(remotePath))
	if out, err := session.CombinedOutput(cmd); err != nil {
		return fmt.Errorf("copy to '%s': %w (output: %s)", remotePath, err, out)
	}
	return nil
}

func (c *connection) Run(ctx context.Context, cmd string) (string, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(cmd)
	return string(out), err
}

func (c *connection) Close() error {
	return c.client.Close()
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
