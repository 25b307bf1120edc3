// Package source defines the contract for a mail retrieval session and the
// errors it reports.
package source

import (
	"context"
	"errors"
	"fmt"
)

// UID is a server-assigned message identifier, unique within one folder.
type UID uint32

// SessionState is the lifecycle position of a Session.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnected
	StateAuthenticated
	StateFolderSelected
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateFolderSelected:
		return "folder selected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidState is returned when an operation is attempted out of order.
var ErrInvalidState = errors.New("invalid session state")

// CheckState returns an ErrInvalidState error if got is not want.
func CheckState(op string, got, want SessionState) error {
	if got != want {
		return fmt.Errorf("%w: %s requires %s, session is %s", ErrInvalidState, op, want, got)
	}
	return nil
}

// Dialer opens sessions to a mail server.
type Dialer interface {
	// Connect opens a transport-secured connection. useTLS selects implicit
	// TLS; otherwise the connection is upgraded with STARTTLS.
	Connect(ctx context.Context, host string, port int, useTLS bool) (Session, error)
}

// Session is one connection to the mail server, used for a single check.
// States only move forward; see SessionState.
type Session interface {
	// State returns the current lifecycle state.
	State() SessionState

	// Authenticate logs in. Connected → Authenticated.
	Authenticate(ctx context.Context, username, credential string) error

	// SelectFolder opens a mailbox. Authenticated → FolderSelected.
	SelectFolder(ctx context.Context, name string) error

	// ListUnseen returns the UIDs of messages without the \Seen flag, in
	// server order. An empty result is not an error.
	ListUnseen(ctx context.Context) ([]UID, error)

	// FetchRaw returns the complete raw message for uid.
	FetchRaw(ctx context.Context, uid UID) ([]byte, error)

	// Close logs out and releases the connection. Failures are logged,
	// not returned.
	Close()
}

// ConnectionError indicates the server could not be reached or the secure
// transport could not be established.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (%s): %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError indicates that the server rejected the login. Message never
// contains the credential.
type AuthError struct {
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Username, e.Message)
}

// FolderNotFoundError indicates the server has no mailbox with that name.
type FolderNotFoundError struct {
	Folder string
	Err    error
}

func (e *FolderNotFoundError) Error() string {
	return fmt.Sprintf("folder %q not found: %v", e.Folder, e.Err)
}

func (e *FolderNotFoundError) Unwrap() error { return e.Err }

// FetchError indicates a single message could not be fetched.
type FetchError struct {
	UID UID
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching message UID %d: %v", e.UID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err (or any error in its chain) is a
// ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsFolderNotFoundError reports whether err (or any error in its chain) is
// a FolderNotFoundError.
func IsFolderNotFoundError(err error) bool {
	var folderErr *FolderNotFoundError
	return errors.As(err, &folderErr)
}

// IsFetchError reports whether err (or any error in its chain) is a
// FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
