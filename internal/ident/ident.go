// Package ident generates the opaque, prefixed identifiers used across all
// persisted entities (prod-…, trx-…, sess-…). The prefix makes IDs
// self-describing in logs and audit trails.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// Entity prefixes. Every table keys on one of these.
const (
	PrefixProduct     = "prod"
	PrefixCategory    = "cat"
	PrefixLocation    = "loc"
	PrefixInventory   = "inv"
	PrefixTransaction = "trx"
	PrefixSession     = "sess"
	PrefixReport      = "rep"
	PrefixUser        = "usr"
	PrefixAuditLog    = "log"
)

// New returns a fresh identifier of the form "<prefix>-<uuid>".
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// HasPrefix reports whether id carries the given entity prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-")
}
