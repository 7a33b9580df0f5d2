// Package cohorts partitions a tenant's users into fixed cohorts so pulse
// load spreads across weekdays. Assignment is a pure hash so it can be
// recomputed anywhere, but membership is persisted once and read back
// afterwards: changing the cohort count never reshuffles existing members.
package cohorts

import (
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// Assign returns the cohort index in [0, n) for a user. Deterministic:
// the same (userID, n) pair always yields the same index.
func Assign(userID uuid.UUID, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New64a()
	h.Write(userID[:])
	return int(h.Sum64() % uint64(n))
}

// ForDay maps a weekday to the cohort whose turn it is. Day index runs
// Monday=0 .. Sunday=6. Days past the cohort count fall to the last
// cohort rather than wrapping modulo, so weekend sends stick to the
// final cohort even when the count changes.
func ForDay(day time.Weekday, n int) int {
	if n <= 1 {
		return 0
	}
	idx := (int(day) + 6) % 7 // Monday first
	if idx >= n {
		return n - 1
	}
	return idx
}
