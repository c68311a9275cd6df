package scraper

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlightGroupCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	fg := NewFlightGroup()
	var executions atomic.Int32
	gate := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]interface{}, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := fg.Do(context.Background(), "landing-page", func() (interface{}, error) {
				executions.Add(1)
				<-gate
				return "semester-map", nil
			})
			require.NoError(t, err)
			results[i] = result
		}(i)
	}

	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), executions.Load())
	for _, r := range results {
		assert.Equal(t, "semester-map", r)
	}
}

func TestFlightGroupForget(t *testing.T) {
	t.Parallel()

	fg := NewFlightGroup()
	var executions atomic.Int32
	fn := func() (interface{}, error) {
		executions.Add(1)
		return nil, nil
	}

	_, _ = fg.Do(context.Background(), "k", fn)
	fg.Forget("k")
	_, _ = fg.Do(context.Background(), "k", fn)

	assert.Equal(t, int32(2), executions.Load())
}
