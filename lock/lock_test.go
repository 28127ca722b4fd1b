package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalLockSerializesHolders(t *testing.T) {
	l := NewLocalLock()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire("funding-address")
			assert.Nil(t, err, "local acquire should not error")
			counter++
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter, "every holder should have run exactly once")
}

func TestLocalLockIndependentResources(t *testing.T) {
	l := NewLocalLock()
	releaseA, err := l.Acquire("address-a")
	assert.Nil(t, err, "acquire should not error")
	defer releaseA()

	// holding a must not block b
	releaseB, err := l.Acquire("address-b")
	assert.Nil(t, err, "a different resource should be acquirable while the first is held")
	releaseB()
}

func TestLocalLockReacquireAfterRelease(t *testing.T) {
	l := NewLocalLock()
	release, err := l.Acquire("address-a")
	assert.Nil(t, err, "acquire should not error")
	release()
	release2, err := l.Acquire("address-a")
	assert.Nil(t, err, "a released resource should be acquirable again")
	release2()
}
