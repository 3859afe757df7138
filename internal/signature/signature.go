package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"enginectl/internal/config"
)

// Sentinel is stored when a record carries no usable signature. It never
// equals a computed digest, so comparison against it always forces a rebuild.
const Sentinel = "no-signature"

// Canonical serializes a snapshot as sorted name=value lines. The form is
// fixed: two snapshots with equal values always canonicalize identically,
// regardless of capture order.
func Canonical(snap config.Snapshot) string {
	var b strings.Builder
	for i, name := range snap.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(snap.Get(name))
	}
	return b.String()
}

// Sign computes the hex digest of the canonical form.
func Sign(snap config.Snapshot) string {
	sum := sha256.Sum256([]byte(Canonical(snap)))
	return hex.EncodeToString(sum[:])
}
