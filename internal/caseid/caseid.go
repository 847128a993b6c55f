// Package caseid allocates collision-resistant eviction case identifiers.
package caseid

import (
	"fmt"
	"regexp"
	"time"

	"gaevic/internal/utils"
)

// Prefix identifies Houston County in generated case ids.
const Prefix = "HOU"

var idPattern = regexp.MustCompile(`^[A-Z]{2,6}-\d{4}-\d{9,11}-[0-9a-z]{4,32}$`)

// Allocate returns a new case id of the form HOU-<year>-<unix>-<random>.
// The unix timestamp keeps ids roughly sortable by creation time; the
// random suffix makes concurrent allocations collision-free without
// coordination. Allocation never fails and performs no I/O.
func Allocate() string {
	now := time.Now()
	return fmt.Sprintf("%s-%d-%d-%s", Prefix, now.Year(), now.Unix(), utils.NanoID())
}

// Valid reports whether id matches the allocation format. Caller-supplied
// ids are honored even when they do not match; this exists for tests and
// diagnostics.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}
