// Package ids derives stable, deterministic entity identifiers.
// No entity ID anywhere in this module is time-based or a global counter —
// every ID is a pure function of (seed, context, index), per spec C1 and the
// "Deep single-language class hierarchies" / "UUID-based IDs" redesign notes.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// hashNamespace is a fixed, arbitrary namespace UUID used as the base for
// every deterministic v5-style hash in this module. It never changes.
var hashNamespace = uuid.MustParse("5a1d1e6e-7a7b-4b0a-9b0a-0c0f1f9a7b10")

// New derives a stable hash string for (seed, salt, index). The same inputs
// always produce the same output, independent of process, time, or order.
func New(seed int64, salt string, index uint64) string {
	payload := fmt.Sprintf("%d:%s:%d", seed, salt, index)
	return uuid.NewSHA1(hashNamespace, []byte(payload)).String()
}

// Entity formats a full entity ID of the form {kind}_{context}_{hash}.
func Entity(kind, context string, seed int64, index uint64) string {
	h := New(seed, kind+"/"+context, index)
	return fmt.Sprintf("%s_%s_%s", kind, context, h[:12])
}
