package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPoolSubmit(t *testing.T) {
	requireBash(t)

	s, _ := newTestSupervisor(t)
	pool := NewPool(zaptest.NewLogger(t), s, 2)
	pool.Start()
	defer pool.Stop()

	result, err := pool.Submit(context.Background(), bashProfile(), "echo pooled", "", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pooled\n", result.Stdout)
	assert.Equal(t, 0, result.ExitCode)
}

func TestPoolConcurrentExecutionsAreIndependent(t *testing.T) {
	requireBash(t)

	s, _ := newTestSupervisor(t)
	pool := NewPool(zaptest.NewLogger(t), s, 2)
	pool.Start()
	defer pool.Stop()

	const n = 8
	var wg sync.WaitGroup
	results := make([]RawResult, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("echo job-%d", i)
			result, err := pool.Submit(context.Background(), bashProfile(), code, "", 10*time.Second)
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	// No cross-contamination: each job sees exactly its own output.
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("job-%d\n", i), results[i].Stdout)
		assert.Equal(t, 0, results[i].ExitCode)
	}
}

func TestPoolQueuesBeyondCapacity(t *testing.T) {
	requireBash(t)

	s, _ := newTestSupervisor(t)
	pool := NewPool(zaptest.NewLogger(t), s, 1)
	pool.Start()
	defer pool.Stop()

	// With one worker, three jobs still all complete; the pool queues
	// them instead of spawning three processes at once.
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := pool.Submit(context.Background(), bashProfile(), "echo ok", "", 10*time.Second)
			assert.NoError(t, err)
			assert.Equal(t, "ok\n", result.Stdout)
		}()
	}
	wg.Wait()
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	s, _ := newTestSupervisor(t)
	pool := NewPool(zaptest.NewLogger(t), s, 1)
	// Pool deliberately not started: Submit must give up when the
	// context expires rather than block forever.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pool.Submit(ctx, bashProfile(), "echo never", "", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolDefaultWorkerCount(t *testing.T) {
	s, _ := newTestSupervisor(t)
	pool := NewPool(zaptest.NewLogger(t), s, 0)
	assert.Equal(t, 2, pool.workers)
}
