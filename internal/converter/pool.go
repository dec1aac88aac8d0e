package converter

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/logger"
)

var (
	ErrNoWorkers         = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeQueueSize = errors.New("attempting to create worker pool with a negative queue size")
	ErrPoolClosed        = errors.New("worker pool is shut down")
)

// Job is a unit of work run on the pool.
type Job func()

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	numWorkers int
	jobQueue   chan Job
	workers    sync.WaitGroup
	pending    sync.WaitGroup

	mu     sync.Mutex
	closed bool

	log *zap.Logger
}

// NewPool starts numWorkers goroutines reading from a queue of queueSize jobs.
func NewPool(numWorkers, queueSize int) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeQueueSize
	}
	p := &Pool{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, queueSize),
		log:        logger.Named("pool"),
	}
	p.start()
	return p, nil
}

func (p *Pool) start() {
	for range p.numWorkers {
		p.workers.Add(1)
		go func() {
			defer p.workers.Done()
			for job := range p.jobQueue {
				p.run(job)
			}
		}()
	}
}

func (p *Pool) run(job Job) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("job panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	job()
}

// Submit queues job and returns at once. When the queue is full the job is
// handed over from a separate goroutine.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.pending.Add(1)
	select {
	case p.jobQueue <- job:
	default:
		go func() { p.jobQueue <- job }()
	}
	return nil
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Shutdown waits for the submitted jobs and stops the workers. Later
// submissions fail with ErrPoolClosed.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.pending.Wait()
	close(p.jobQueue)
	p.workers.Wait()
	return nil
}
