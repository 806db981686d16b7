package gows

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fatih/color"
)

// Job is a unit of work handed off to a pool worker.
type Job func()

// Pool is a fixed-size set of worker goroutines draining jobs from a shared
// channel. Workers are symmetric: any worker may run any job, no priority,
// no affinity. Closing the channel drains and joins every worker
// deterministically.
type Pool struct {
	jobs     chan Job
	wg       sync.WaitGroup
	overflow sync.WaitGroup
	logger   *Logger
}

// jobQueueDepth bounds the handoff channel. The reference design's channel
// is conceptually unbounded; Go has no unbounded channel primitive, so the
// port uses a generously sized buffer plus an overflow fallback in Execute
// (a one-off goroutine that runs the job itself) for the rare case the
// buffer is actually full, rather than blocking the accept loop.
const jobQueueDepth = 4096

// BuildPool constructs a Pool of n workers. n must be at least 1.
func BuildPool(n int, logger *Logger) (*Pool, error) {
	if n <= 0 {
		return nil, errors.New("pool: worker count must be at least 1")
	}

	p := &Pool{
		jobs:   make(chan Job, jobQueueDepth),
		logger: logger,
	}

	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p, nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.runJob(job)
	}
}

// runJob executes job, recovering any panic so a single bad job never
// takes down the worker goroutine that runs it.
func (p *Pool) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Error("worker recovered from panic: {}", Colored(fmt.Sprint(r), color.New(color.FgRed)))
			}
		}
	}()
	job()
}

// Execute enqueues job for exactly one worker. If the buffered channel is
// momentarily full, job instead runs on a one-off goroutine outside the
// worker set rather than blocking the caller (typically the accept loop).
func (p *Pool) Execute(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.runJob(job)
		}()
	}
}

// Close closes the handoff channel and blocks until every worker and every
// overflow goroutine has finished.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
	p.overflow.Wait()
}
