// Package reference generates and validates payment references. A reference
// is the idempotency key for one payment attempt: generated locally before
// the gateway ever sees the transaction, then echoed back by redirects and
// webhooks. Untrusted references must pass IsValid before any storage lookup.
package reference

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Prefix identifies references issued by this service.
const Prefix = "HCL"

// referencePattern is the exact shape of a generated reference:
// HCL_<base36 timestamp, upper>_<16 uppercase hex chars>.
var referencePattern = regexp.MustCompile(`^HCL_[A-Z0-9]+_[A-F0-9]{16}$`)

// Generate produces a new unique payment reference. The timestamp segment
// orders references roughly by creation time; the 8 random bytes make
// collisions within the same millisecond practically impossible.
func Generate() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand reading from the OS entropy pool does not fail on any
		// supported platform; panicking beats silently issuing weak references.
		panic(fmt.Sprintf("reference: entropy source unavailable: %v", err))
	}

	return fmt.Sprintf("%s_%s_%s", Prefix, ts, strings.ToUpper(hex.EncodeToString(buf)))
}

// IsValid reports whether s matches the generated reference format. It accepts
// exactly what Generate produces and nothing else.
func IsValid(s string) bool {
	return referencePattern.MatchString(s)
}
