// Package wifi manages the wireless link the polls depend on.
package wifi

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

const (
	// stateTimeout bounds the link-state query so a wedged nmcli cannot
	// stall the loop for long.
	stateTimeout = 2 * time.Second
	// connectTimeout bounds a single association attempt.
	connectTimeout = 15 * time.Second
)

// Link reports wireless association state and re-associates to the
// configured network via NetworkManager. It deliberately knows nothing
// about server reachability: a server outage must surface as a poll
// failure, not as a link drop.
type Link struct {
	ssid     string
	password string
	addr     string // host:port of the Nightscout server, for logging

	run func(timeout time.Duration, args ...string) ([]byte, error)
}

// NewLink derives the server address for logging from the server URL.
func NewLink(ssid, password, serverURL string) (*Link, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL %q has no host", serverURL)
	}

	addr := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		addr = net.JoinHostPort(u.Hostname(), port)
	}

	return &Link{ssid: ssid, password: password, addr: addr, run: runNmcli}, nil
}

// Up reports whether a wifi device is currently associated.
func (l *Link) Up() bool {
	out, err := l.run(stateTimeout, "-t", "-f", "TYPE,STATE", "device", "status")
	if err != nil {
		return false
	}

	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.SplitN(line, ":", 2)
		if len(fields) == 2 && fields[0] == "wifi" && strings.HasPrefix(fields[1], "connected") {
			return true
		}
	}
	return false
}

// Connect makes one association attempt. The caller owns the retry policy.
func (l *Link) Connect() error {
	args := []string{"device", "wifi", "connect", l.ssid}
	if l.password != "" {
		args = append(args, "password", l.password)
	}

	out, err := l.run(connectTimeout, args...)
	if err != nil {
		return fmt.Errorf("nmcli: %w: %s", err, out)
	}
	return nil
}

// Addr returns the server address. Exposed for logging.
func (l *Link) Addr() string {
	return l.addr
}

// runNmcli executes nmcli with a deadline so a hung invocation cannot block
// the control loop indefinitely.
func runNmcli(timeout time.Duration, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
}
