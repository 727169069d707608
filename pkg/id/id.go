package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// ulid.Monotonic keeps ids minted within the same millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewAt returns a ULID whose timestamp component is t.
//
// Signals, investments and simulator trades are stamped with the session
// clock rather than the wall clock, so their ids sort in the same order as
// the records they identify.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Monotonic entropy only fails when more than 2^80 ids share a
		// millisecond; fall back to fresh entropy rather than panicking.
		id = ulid.MustNew(ulid.Timestamp(t.UTC()), cryptoRand.Reader)
	}
	return id.String()
}
