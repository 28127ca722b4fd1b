package threadsafe_ulid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptIDsAreUniqueUnderConcurrency(t *testing.T) {
	gen := NewThreadSafeUlid()
	var mtx sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.NewAttemptID()
				assert.Equal(t, 26, len(id), "attempt id should be a 26-char ULID")
				mtx.Lock()
				assert.False(t, seen[id], "attempt ids should never repeat")
				seen[id] = true
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()
}
