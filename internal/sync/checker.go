// Package sync drives a mailbox check: it fetches unseen messages from the
// server and stores each one locally.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/mailcheck/internal/credential"
	"github.com/nhle/mailcheck/internal/model"
	"github.com/nhle/mailcheck/internal/source"
	"github.com/nhle/mailcheck/internal/store"
)

// MessageFailure records a message that could not be fetched or stored.
type MessageFailure struct {
	UID source.UID
	Err error
}

// CheckResult summarizes a completed check.
type CheckResult struct {
	// Folder is the mailbox that was checked.
	Folder string

	// Unseen is the number of unseen UIDs the server listed, regardless of
	// how many were stored.
	Unseen int

	// Stored counts newly written files; Skipped counts ones already present.
	Stored  int
	Skipped int

	Failures []MessageFailure
}

// Checker retrieves unseen messages for one account.
type Checker struct {
	account     model.AccountSettings
	credentials credential.Provider
	dialer      source.Dialer
	store       store.MessageStore
	index       store.Index
	log         *zap.Logger
	now         func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithIndex records stored messages and check runs in idx.
func WithIndex(idx store.Index) Option {
	return func(c *Checker) { c.index = idx }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Checker) { c.log = log }
}

// New creates a Checker for account.
func New(
	account model.AccountSettings,
	credentials credential.Provider,
	dialer source.Dialer,
	messages store.MessageStore,
	opts ...Option,
) *Checker {
	c := &Checker{
		account:     account,
		credentials: credentials,
		dialer:      dialer,
		store:       messages,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("account", account.Email))
	return c
}

// Check fetches every unseen message in folderOverride (or the account's
// default folder, or "inbox") and stores the ones not already on disk.
// Failures before the folder is selected abort the check; per-message
// failures are collected in the result.
func (c *Checker) Check(ctx context.Context, folderOverride string) (*CheckResult, error) {
	started := c.now()
	folder := c.account.ResolveFolder(folderOverride)
	log := c.log.With(zap.String("folder", folder))

	password, err := c.credentials.Retrieve(ctx, c.account.PasswordCmd)
	if err != nil {
		return nil, fmt.Errorf("retrieving password: %w", err)
	}

	sess, err := c.dialer.Connect(
		ctx, c.account.IMAPServer, c.account.IMAPPort, c.account.UseTLS,
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.account.IMAPServer, err)
	}
	defer sess.Close()

	if err := sess.Authenticate(ctx, c.account.Username, password); err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", c.account.Username, err)
	}

	if err := sess.SelectFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("selecting folder: %w", err)
	}

	uids, err := sess.ListUnseen(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unseen messages: %w", err)
	}
	log.Debug("found unseen messages", zap.Int("count", len(uids)))

	result := &CheckResult{Folder: folder, Unseen: len(uids)}

	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, err := c.fetchAndStore(ctx, sess, folder, uid)
		if err != nil {
			log.Warn("skipping message", zap.Uint32("uid", uint32(uid)), zap.Error(err))
			result.Failures = append(result.Failures, MessageFailure{UID: uid, Err: err})
			continue
		}

		if !msg.Written {
			result.Skipped++
			log.Debug("message already stored",
				zap.Uint32("uid", uint32(uid)), zap.String("path", msg.Path))
			continue
		}

		result.Stored++
		log.Info("saved message",
			zap.Uint32("uid", uint32(uid)), zap.String("path", msg.Path))
		c.recordMessage(ctx, msg)
	}

	c.recordCheck(ctx, result, started)
	return result, nil
}

// fetchAndStore fetches one message and hands it to the store.
func (c *Checker) fetchAndStore(
	ctx context.Context, sess source.Session, folder string, uid source.UID,
) (*model.StoredMessage, error) {
	raw, err := sess.FetchRaw(ctx, uid)
	if err != nil {
		return nil, err
	}
	return c.store.Store(c.account.Email, folder, uint32(uid), raw)
}

// recordMessage adds msg to the index. Failures are only logged.
func (c *Checker) recordMessage(ctx context.Context, msg *model.StoredMessage) {
	if c.index == nil {
		return
	}
	rec := store.NewMessageRecord(c.account.Email, msg)
	if err := c.index.RecordMessage(ctx, rec); err != nil {
		c.log.Warn("indexing message failed",
			zap.String("path", msg.Path), zap.Error(err))
	}
}

// recordCheck adds the check run to the index. Failures are only logged.
func (c *Checker) recordCheck(ctx context.Context, result *CheckResult, started time.Time) {
	if c.index == nil {
		return
	}
	run := model.CheckRun{
		ID:         uuid.New().String(),
		Account:    c.account.Email,
		Folder:     result.Folder,
		StartedAt:  started,
		FinishedAt: c.now(),
		Unseen:     result.Unseen,
		Stored:     result.Stored,
		Skipped:    result.Skipped,
		Failed:     len(result.Failures),
	}
	if err := c.index.RecordCheck(ctx, run); err != nil {
		c.log.Warn("recording check failed", zap.Error(err))
	}
}
