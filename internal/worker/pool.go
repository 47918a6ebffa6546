package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sszokoly/bgwmon/internal/log"
)

// ErrGatewayBusy reports a submit for a gateway whose previous poll has
// not finished yet.
var ErrGatewayBusy = errors.New("gateway poll already in flight")

// WorkerPool runs per-gateway poll jobs concurrently. The pool itself
// enforces the single-writer rule for gateways: at most one job per
// gateway is in flight at a time, and a second submit for the same
// gateway is rejected with ErrGatewayBusy until the first completes.
type WorkerPool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	mu       sync.Mutex
	inFlight map[string]bool
}

// Job represents one poll cycle for one gateway
type Job struct {
	Gateway string
	Handler func(context.Context) error
	Result  chan error
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(maxWorkers int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, 100),
		ctx:        ctx,
		cancel:     cancel,
		inFlight:   make(map[string]bool),
	}
}

// Start starts the worker pool
func (p *WorkerPool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info("Worker pool started", "workers", p.maxWorkers)
}

// Stop stops the worker pool
func (p *WorkerPool) Stop() {
	close(p.jobs)
	p.cancel()
	p.wg.Wait()
}

// Submit queues a poll job, claiming the in-flight slot for its gateway.
func (p *WorkerPool) Submit(job Job) error {
	p.mu.Lock()
	if p.inFlight[job.Gateway] {
		p.mu.Unlock()
		return ErrGatewayBusy
	}
	p.inFlight[job.Gateway] = true
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		p.release(job.Gateway)
		return p.ctx.Err()
	}
}

func (p *WorkerPool) release(gateway string) {
	p.mu.Lock()
	delete(p.inFlight, gateway)
	p.mu.Unlock()
}

// worker is the worker goroutine
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}

			log.Debug("Worker polling gateway", "worker_id", id, "gateway", job.Gateway)

			err := job.Handler(p.ctx)
			p.release(job.Gateway)
			if job.Result != nil {
				job.Result <- err
			}
		}
	}
}
