// Package hostctl holds the tablet's own document renderer off the SSH
// connection for the duration of a mount, so it cannot repaint a file out
// from under a document this process is editing.
package hostctl

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/ssh"
)

const (
	stopCmd  = "systemctl stop xochitl"
	startCmd = "systemctl start xochitl"
)

// Session is a scoped hold on the device's renderer: Open stops xochitl,
// and Close — which callers must run on every exit path, including a
// SIGINT/SIGTERM — restarts it. The original's connection.py achieves the
// same guarantee with a shell "trap" wrapped around the whole SSH session;
// here the guarantee instead comes from the caller's defer/signal-handler
// discipline (see cmd/remarkablefs/commands/mount.go), since Go already
// has cleaner idioms than a borrowed shell trap for "always run on exit".
type Session struct {
	conn *ssh.Client
}

// Open dials addr and stops xochitl, returning a Session whose Close
// restarts it. The ssh.Client is owned by the Session and closed by Close.
func Open(addr string, cc *ssh.ClientConfig) (*Session, error) {
	conn, err := ssh.Dial("tcp", addr, cc)
	if err != nil {
		return nil, fmt.Errorf("hostctl: dial %s: %w", addr, err)
	}
	s := &Session{conn: conn}
	if err := s.run(stopCmd); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hostctl: stop renderer: %w", err)
	}
	return s, nil
}

// Close restarts xochitl and releases the underlying connection. It is
// safe to call more than once; only the first call has effect.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.run(startCmd)
	closeErr := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("hostctl: start renderer: %w", err)
	}
	return closeErr
}

func (s *Session) run(cmd string) error {
	sess, err := s.conn.NewSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var stderr bytes.Buffer
	sess.Stderr = &stderr
	if err := sess.Run(cmd); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd, err, stderr.String())
	}
	return nil
}
