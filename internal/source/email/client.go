package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/nhle/mailcheck/internal/source"
)

// defaultDialTimeout bounds TCP connect when the context has no deadline.
const defaultDialTimeout = 30 * time.Second

// Dialer opens IMAP sessions using go-imap v2.
type Dialer struct {
	// Timeout bounds the TCP connect. Zero means defaultDialTimeout.
	Timeout time.Duration

	// TLSConfig is cloned for each connection; ServerName is filled in from
	// the host when empty.
	TLSConfig *tls.Config

	log *zap.Logger
}

// NewDialer creates a Dialer that logs to log.
func NewDialer(log *zap.Logger) *Dialer {
	return &Dialer{log: log}
}

// Connect dials host:port, establishes TLS (implicit or STARTTLS) and waits
// for the server greeting.
func (d *Dialer) Connect(
	ctx context.Context, host string, port int, useTLS bool,
) (source.Session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	nd := net.Dialer{Timeout: timeout}

	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &source.ConnectionError{Addr: addr, Err: err}
	}

	tlsConfig := d.tlsConfig(host)
	opts := &imapclient.Options{TLSConfig: tlsConfig}

	var client *imapclient.Client
	if useTLS {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, &source.ConnectionError{
				Addr: addr,
				Err:  fmt.Errorf("TLS handshake: %w", err),
			}
		}
		client = imapclient.New(tlsConn, opts)
	} else {
		client, err = imapclient.NewStartTLS(conn, opts)
		if err != nil {
			conn.Close()
			return nil, &source.ConnectionError{
				Addr: addr,
				Err:  fmt.Errorf("STARTTLS: %w", err),
			}
		}
	}

	if err := client.WaitGreeting(); err != nil {
		client.Close()
		return nil, &source.ConnectionError{
			Addr: addr,
			Err:  fmt.Errorf("waiting for greeting: %w", err),
		}
	}

	d.logger().Debug("connected to IMAP server",
		zap.String("addr", addr), zap.Bool("tls", useTLS))

	return &Session{
		client: client,
		addr:   addr,
		state:  source.StateConnected,
		log:    d.logger().With(zap.String("addr", addr)),
	}, nil
}

func (d *Dialer) tlsConfig(host string) *tls.Config {
	var cfg *tls.Config
	if d.TLSConfig != nil {
		cfg = d.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

func (d *Dialer) logger() *zap.Logger {
	if d.log == nil {
		return zap.NewNop()
	}
	return d.log
}

// Session is an IMAP connection driven through the source.Session states.
// It is not safe for concurrent use.
type Session struct {
	client *imapclient.Client
	addr   string
	state  source.SessionState
	folder string
	log    *zap.Logger
}

// State returns the current lifecycle state.
func (s *Session) State() source.SessionState {
	return s.state
}

// Authenticate sends LOGIN. A rejection becomes a *source.AuthError whose
// text has the credential scrubbed out.
func (s *Session) Authenticate(
	_ context.Context, username, credential string,
) error {
	if err := source.CheckState("authenticate", s.state, source.StateConnected); err != nil {
		return err
	}

	if err := s.client.Login(username, credential).Wait(); err != nil {
		var imapErr *imap.Error
		if errors.As(err, &imapErr) {
			return &source.AuthError{
				Username: username,
				Message:  redact("server rejected login: "+imapErr.Text, credential),
			}
		}
		return &source.ConnectionError{
			Addr: s.addr,
			Err:  errors.New(redact("login: "+err.Error(), credential)),
		}
	}

	s.state = source.StateAuthenticated
	s.log.Debug("authenticated", zap.String("username", username))
	return nil
}

// SelectFolder sends SELECT. A NO response means the mailbox does not exist.
func (s *Session) SelectFolder(_ context.Context, name string) error {
	if err := source.CheckState("select", s.state, source.StateAuthenticated); err != nil {
		return err
	}

	data, err := s.client.Select(name, nil).Wait()
	if err != nil {
		var imapErr *imap.Error
		if errors.As(err, &imapErr) && imapErr.Type == imap.StatusResponseTypeNo {
			return &source.FolderNotFoundError{Folder: name, Err: err}
		}
		return fmt.Errorf("selecting %s: %w", name, err)
	}

	s.state = source.StateFolderSelected
	s.folder = name
	s.log.Debug("selected folder",
		zap.String("folder", name), zap.Uint32("messages", data.NumMessages))
	return nil
}

// ListUnseen runs UID SEARCH UNSEEN.
func (s *Session) ListUnseen(_ context.Context) ([]source.UID, error) {
	if err := source.CheckState("search", s.state, source.StateFolderSelected); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages in %s: %w", s.folder, err)
	}

	uids := searchData.AllUIDs()
	out := make([]source.UID, 0, len(uids))
	for _, uid := range uids {
		out = append(out, source.UID(uid))
	}

	s.log.Debug("listed unseen messages",
		zap.String("folder", s.folder), zap.Int("count", len(out)))
	return out, nil
}

// FetchRaw fetches BODY.PEEK[] for uid, leaving its flags untouched.
func (s *Session) FetchRaw(_ context.Context, uid source.UID) ([]byte, error) {
	if err := source.CheckState("fetch", s.state, source.StateFolderSelected); err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}

	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(imap.UID(uid)), fetchOpts)

	var raw []byte
	var fetchErr error
	if msg := fetchCmd.Next(); msg == nil {
		fetchErr = errors.New("message not found")
	} else if buf, err := msg.Collect(); err != nil {
		fetchErr = fmt.Errorf("collecting message data: %w", err)
	} else if raw = buf.FindBodySection(bodySection); raw == nil {
		fetchErr = errors.New("server returned no body")
	}

	if err := fetchCmd.Close(); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, &source.FetchError{UID: uid, Err: fetchErr}
	}

	s.log.Debug("fetched message",
		zap.Uint32("uid", uint32(uid)), zap.Int("bytes", len(raw)))
	return raw, nil
}

// Close sends LOGOUT and closes the connection.
func (s *Session) Close() {
	if s.state == source.StateClosed {
		return
	}
	s.state = source.StateClosed

	if err := s.client.Logout().Wait(); err != nil {
		s.log.Warn("logout failed", zap.Error(err))
	}
	if err := s.client.Close(); err != nil {
		s.log.Debug("closing connection", zap.Error(err))
	}
}

// redact removes every occurrence of secret from msg.
func redact(msg, secret string) string {
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "[redacted]")
}
