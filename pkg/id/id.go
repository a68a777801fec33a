// Package id issues run identifiers for dashboards and enrichment runs.
// They are ULIDs, so the string order is the order the runs happened in.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic keeps ids from the same millisecond increasing.
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a run id stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a run id stamped with t, e.g. the time a report describes.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t.UTC()), entropy)
	if err != nil {
		// Only fails for times outside the ULID range or a broken reader.
		panic(err)
	}
	return u.String()
}

// Time returns the millisecond timestamp embedded in a run id.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("run id %q: %w", s, err)
	}
	return ulid.Time(u.Time()).UTC(), nil
}
