package testutil

import (
	"bytes"
	"crypto/tls"
	"net"
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
)

// TLSMode selects how a test server secures its connections.
type TLSMode int

const (
	// NoTLS serves cleartext and does not offer STARTTLS.
	NoTLS TLSMode = iota
	// StartTLS serves cleartext and offers STARTTLS.
	StartTLS
	// ImplicitTLS wraps the listener in TLS.
	ImplicitTLS
)

// IMAPServer is an in-memory IMAP server listening on loopback.
type IMAPServer struct {
	Host string
	Port int
	User *imapmemserver.User

	// ClientTLS trusts the server certificate. It is nil for NoTLS.
	ClientTLS *tls.Config
}

// NewIMAPServer starts a server with one user owning the given mailboxes.
// It is shut down when the test completes.
func NewIMAPServer(t *testing.T, mode TLSMode, username, password string, mailboxes ...string) *IMAPServer {
	t.Helper()

	memServer := imapmemserver.New()
	user := imapmemserver.NewUser(username, password)
	for _, name := range mailboxes {
		if err := user.Create(name, nil); err != nil {
			t.Fatalf("creating mailbox %s: %v", name, err)
		}
	}
	memServer.AddUser(user)

	var serverTLS, clientTLS *tls.Config
	if mode != NoTLS {
		serverTLS, clientTLS = SelfSignedTLS(t)
	}

	opts := &imapserver.Options{
		NewSession: func(*imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return memServer.NewSession(), nil, nil
		},
		Caps: imap.CapSet{
			imap.CapIMAP4rev1: {},
			imap.CapIMAP4rev2: {},
		},
		InsecureAuth: true,
	}
	if mode == StartTLS {
		opts.TLSConfig = serverTLS
	}
	server := imapserver.New(opts)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	if mode == ImplicitTLS {
		ln = tls.NewListener(ln, serverTLS)
	}
	go server.Serve(ln)

	t.Cleanup(func() {
		server.Close()
	})

	return &IMAPServer{
		Host:      addr.IP.String(),
		Port:      addr.Port,
		User:      user,
		ClientTLS: clientTLS,
	}
}

// Append adds raw to mailbox with the given flags and returns its UID.
func (s *IMAPServer) Append(t *testing.T, mailbox string, raw []byte, flags ...imap.Flag) imap.UID {
	t.Helper()

	data, err := s.User.Append(mailbox, bytes.NewReader(raw), &imap.AppendOptions{Flags: flags})
	if err != nil {
		t.Fatalf("appending to %s: %v", mailbox, err)
	}
	return data.UID
}

// UnusedPort returns a loopback port with nothing listening on it.
func UnusedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

// Message builds a minimal RFC 5322 message.
func Message(subject, body string) []byte {
	return []byte("From: Sender <sender@example.com>\r\n" +
		"To: me@example.com\r\n" +
		"Subject: " + subject + "\r\n" +
		"Message-ID: <" + subject + "@example.com>\r\n" +
		"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
		"\r\n" +
		body + "\r\n")
}
