package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nhle/mailcheck/internal/model"
)

// messageExt is the file extension of stored messages.
const messageExt = ".eml"

// StorageError reports a failure to persist a single message.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s %s): %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err (or any error in its chain) is a
// StorageError.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// FileStore writes messages to <root>/<account>/<folder>/<address>.eml.
// The filesystem is the only record of what has been stored.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at root, which is made absolute.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root %s: %w", root, err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *FileStore) Root() string {
	return s.root
}

// FolderDir returns the directory holding messages of folder for account.
func (s *FileStore) FolderDir(account, folder string) (string, error) {
	if account == "" || account != filepath.Base(account) || account == "." || account == ".." {
		return "", &StorageError{Op: "resolve", Path: account, Err: errors.New("invalid account name")}
	}
	local := filepath.FromSlash(folder)
	if folder == "" || !filepath.IsLocal(local) {
		return "", &StorageError{Op: "resolve", Path: folder, Err: errors.New("folder escapes account directory")}
	}
	return filepath.Join(s.root, account, local), nil
}

// Store writes raw unless a file for (folder, uid) already exists, in which
// case nothing is written and Written is false. The file appears under its
// final name only once fully written.
func (s *FileStore) Store(
	account, folder string, uid uint32, raw []byte,
) (*model.StoredMessage, error) {
	dir, err := s.FolderDir(account, folder)
	if err != nil {
		return nil, err
	}

	address := Address(folder, uid)
	path := filepath.Join(dir, address+messageExt)
	msg := &model.StoredMessage{
		Address: address,
		Path:    path,
		Folder:  folder,
		UID:     uid,
		Raw:     raw,
	}

	if _, err := os.Stat(path); err == nil {
		return msg, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	if err := writeFileAtomic(dir, path, raw); err != nil {
		return nil, err
	}

	msg.Written = true
	return msg, nil
}

// writeFileAtomic writes data to a temp file in dir and renames it to path.
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &StorageError{Op: "create", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: op, Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
