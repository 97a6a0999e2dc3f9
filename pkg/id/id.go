// Package id mints the identifiers fxscan attaches to orders: ULIDs, so
// client order ids and journal rows sort by creation time.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// Monotonic entropy keeps ids minted in the same millisecond in
	// creation order; crypto/rand keeps them unguessable.
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
