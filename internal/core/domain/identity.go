package domain

// Content addressing for documents. Identical (tool, content) pairs always
// hash to the same id, so resubmission dedupes naturally. The format matches
// the historical one: "0x" followed by 32 hex characters.

import (
	"crypto/md5" //nolint:gosec // content addressing, not authentication
	"encoding/hex"
)

// identityPrefix marks a string as a document id.
const identityPrefix = "0x"

// identityLen is the full length of an id: prefix plus hex digest.
const identityLen = len(identityPrefix) + 2*md5.Size

// Identity derives the content address for a document. If content already
// syntactically matches the id format it is accepted as an explicit,
// pre-computed id and is not re-hashed. No side effects.
func Identity(tool, content string) string {
	if IsIdentity(content) {
		return content
	}
	h := md5.New() //nolint:gosec // content addressing, not authentication
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return identityPrefix + hex.EncodeToString(h.Sum(nil))
}

// IsIdentity reports whether s syntactically matches the document id format.
func IsIdentity(s string) bool {
	if len(s) != identityLen || s[:len(identityPrefix)] != identityPrefix {
		return false
	}
	for i := len(identityPrefix); i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
