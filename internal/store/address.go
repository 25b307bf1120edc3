package store

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// AddressLen is the length of a content address in hex characters.
const AddressLen = sha1.Size * 2

// Address returns the content address of the message with uid in folder:
// the hex SHA-1 of the folder name followed by the decimal UID. The account
// is not part of the input; accounts are separated by directory.
func Address(folder string, uid uint32) string {
	h := sha1.New()
	h.Write([]byte(folder))
	h.Write([]byte(strconv.FormatUint(uint64(uid), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
