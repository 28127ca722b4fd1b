package threadsafe_ulid

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ThreadSafeUlid issues attempt ids for anchoring calls. Every attempt gets
// a ULID so log lines and reconciliation warnings from concurrent calls can
// be correlated.
type ThreadSafeUlid struct {
	safe safeMonotonicReader
}

func NewThreadSafeUlid() *ThreadSafeUlid {
	return &ThreadSafeUlid{
		safe: safeMonotonicReader{MonotonicReader: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)},
	}
}

// NewUlid : a fresh ULID stamped with the current time
func (u *ThreadSafeUlid) NewUlid() (ulid.ULID, error) {
	return ulid.New(ulid.Timestamp(time.Now()), &u.safe)
}

// NewAttemptID : string form, or empty on entropy exhaustion
func (u *ThreadSafeUlid) NewAttemptID() string {
	id, err := u.NewUlid()
	if err != nil {
		return ""
	}
	return id.String()
}

type safeMonotonicReader struct {
	mtx sync.Mutex
	ulid.MonotonicReader
}

func (r *safeMonotonicReader) MonotonicRead(ms uint64, p []byte) (err error) {
	r.mtx.Lock()
	err = r.MonotonicReader.MonotonicRead(ms, p)
	r.mtx.Unlock()
	return err
}
