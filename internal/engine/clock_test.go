package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogicalClock_New(t *testing.T) {
	c := NewLogicalClock()
	assert.Equal(t, int64(0), c.Current(), "new clock should start at 0")
}

func TestLogicalClock_NewAt(t *testing.T) {
	c := NewLogicalClockAt(100)
	assert.Equal(t, int64(100), c.Current())
	assert.Equal(t, int64(101), c.Now())
}

func TestLogicalClock_Next_Incrementing(t *testing.T) {
	c := NewLogicalClock()

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Now())
	assert.Equal(t, int64(3), c.Next())
	assert.Equal(t, int64(3), c.Current())
}

func TestLogicalClock_Next_Unique(t *testing.T) {
	c := NewLogicalClock()
	const goroutines = 50
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				v := c.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine, "every value must be unique")
}

func TestWallClock_Advances(t *testing.T) {
	var c WallClock
	a := c.Now()
	b := c.Now()
	assert.GreaterOrEqual(t, b, a)
	assert.Positive(t, a)
}

func TestClockFunc(t *testing.T) {
	c := ClockFunc(func() int64 { return 7 })
	assert.Equal(t, int64(7), c.Now())
}
