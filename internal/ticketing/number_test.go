package ticketing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCounter struct {
	mu    sync.Mutex
	count int64
	// gate, when set, holds every Count call until released so concurrent
	// callers observe the same value.
	gate chan struct{}
	err  error
}

func (c *memoryCounter) Count(context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	n := c.count
	c.mu.Unlock()
	if c.gate != nil {
		<-c.gate
	}
	return n, nil
}

func (c *memoryCounter) insert() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

type memorySequence struct {
	value atomic.Int64
}

func (s *memorySequence) NextValue(context.Context, string) (int64, error) {
	return s.value.Add(1), nil
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "TKT-00001", FormatNumber(1))
	assert.Equal(t, "TKT-00042", FormatNumber(42))
	assert.Equal(t, "TKT-123456", FormatNumber(123456))
}

func TestCountAllocator_SequentialIsIncreasing(t *testing.T) {
	ctx := context.Background()
	counter := &memoryCounter{}
	alloc := NewCountAllocator(counter)

	var previous string
	for i := 0; i < 20; i++ {
		number, err := alloc.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, number, previous)
		previous = number
		counter.insert()
	}
	assert.Equal(t, "TKT-00020", previous)
}

func TestCountAllocator_ConcurrentCreationCollides(t *testing.T) {
	counter := &memoryCounter{count: 7, gate: make(chan struct{})}
	alloc := NewCountAllocator(counter)

	var wg sync.WaitGroup
	numbers := make([]string, 2)
	for i := range numbers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			number, err := alloc.Next(context.Background())
			assert.NoError(t, err)
			numbers[i] = number
		}(i)
	}
	close(counter.gate)
	wg.Wait()

	// Known race: both creations read count=7 before either inserts.
	assert.Equal(t, "TKT-00008", numbers[0])
	assert.Equal(t, numbers[0], numbers[1])
}

func TestCountAllocator_CounterError(t *testing.T) {
	alloc := NewCountAllocator(&memoryCounter{err: errors.New("db down")})
	_, err := alloc.Next(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestSequenceAllocator_ConcurrentCreationIsUnique(t *testing.T) {
	alloc := NewSequenceAllocator(&memorySequence{})

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := alloc.Next(context.Background())
			assert.NoError(t, err)
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for number := range results {
		assert.False(t, seen[number], "duplicate %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["TKT-00001"])
	assert.True(t, seen["TKT-00050"])
}
