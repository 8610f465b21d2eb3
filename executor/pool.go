package executor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// job is one queued execution. The worker writes exactly one RawResult
// to resultCh and never reads from it.
type job struct {
	ctx      context.Context
	profile  Profile
	code     string
	stdin    string
	timeout  time.Duration
	resultCh chan<- RawResult
}

// Pool is a fixed-size worker pool in front of the Supervisor. It is
// the admission-control valve: at most `workers` subprocesses are alive
// at once, and demand beyond that queues here instead of fanning out
// into unbounded OS processes.
type Pool struct {
	logger     *zap.Logger
	supervisor *Supervisor
	workers    int

	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

// NewPool creates a pool with the given number of workers.
func NewPool(logger *zap.Logger, supervisor *Supervisor, workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		logger:     logger,
		supervisor: supervisor,
		workers:    workers,
		jobs:       make(chan job),
	}
}

// Start launches the workers. Safe to call once; later calls are no-ops.
func (p *Pool) Start() {
	p.once.Do(func() {
		p.logger.Info("starting execution worker pool", zap.Int("workers", p.workers))
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop closes the queue and waits for in-flight executions to finish.
// Submit must not be called after Stop.
func (p *Pool) Stop() {
	p.logger.Info("stopping execution worker pool")
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		if j.ctx.Err() != nil {
			// Caller gave up while the job sat in the queue.
			j.resultCh <- RawResult{SpawnErr: j.ctx.Err()}
			continue
		}
		result := p.supervisor.Run(j.ctx, j.profile, j.code, j.stdin, j.timeout)
		j.resultCh <- result
	}
	p.logger.Debug("execution worker exited", zap.Int("worker", id))
}

// Submit queues one execution and blocks until its result is ready or
// ctx is done. The calling goroutine never touches the subprocess
// itself; all blocking I/O happens on a worker.
func (p *Pool) Submit(ctx context.Context, profile Profile, code, stdin string, timeout time.Duration) (RawResult, error) {
	resultCh := make(chan RawResult, 1)
	j := job{
		ctx:      ctx,
		profile:  profile,
		code:     code,
		stdin:    stdin,
		timeout:  timeout,
		resultCh: resultCh,
	}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return RawResult{}, ctx.Err()
	}

	select {
	case result := <-resultCh:
		return result, nil
	case <-ctx.Done():
		return RawResult{}, ctx.Err()
	}
}
