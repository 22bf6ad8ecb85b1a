package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFixedClock_DoesNotMove(t *testing.T) {
	c := NewFixedClock(epoch)

	assert.Equal(t, epoch, c.Now())
	assert.Equal(t, epoch, c.Now())
}

func TestFixedClock_AdvanceAndSet(t *testing.T) {
	c := NewFixedClock(epoch)

	c.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), c.Now())

	later := epoch.Add(24 * time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestStepClock_AdvancesPerCall(t *testing.T) {
	c := NewStepClock(epoch, time.Minute)

	assert.Equal(t, epoch, c.Now())
	assert.Equal(t, epoch.Add(time.Minute), c.Now())
	assert.Equal(t, epoch.Add(2*time.Minute), c.Now())
}

func TestStepClock_ConcurrentCallsAreDistinct(t *testing.T) {
	c := NewStepClock(epoch, time.Second)

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			now := c.Now()
			mu.Lock()
			seen[now] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50, "each call should observe a different instant")
}
