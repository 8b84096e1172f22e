package mainqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsInOrder(t *testing.T) {
	q := New()
	defer q.Close()

	var got []int
	for i := 0; i < 50; i++ {
		v := i
		require.True(t, q.Post(func() { got = append(got, v) }))
	}
	q.Flush()

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueue_NestedPostRunsAfterCurrent(t *testing.T) {
	q := New()
	defer q.Close()

	var got []string
	q.Sync(func() {
		q.Post(func() { got = append(got, "inner") })
		got = append(got, "outer")
	})
	q.Flush()

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestQueue_ConcurrentPostersAreSerialized(t *testing.T) {
	q := New()
	defer q.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()
	q.Flush()

	assert.Equal(t, 2000, counter)
}

func TestQueue_PostAfterCloseIsDropped(t *testing.T) {
	q := New()
	ran := false
	q.Post(func() { ran = true })
	q.Close()

	assert.True(t, ran, "work queued before Close should still run")
	assert.False(t, q.Post(func() {}))
	assert.False(t, q.Sync(func() {}))

	// second Close is a no-op
	q.Close()
}

func TestQueue_PostNil(t *testing.T) {
	q := New()
	defer q.Close()
	assert.False(t, q.Post(nil))
}
