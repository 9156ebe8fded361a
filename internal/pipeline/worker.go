package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// JobHandler processes one pipeline job end to end. Satisfied by
// *Orchestrator.
type JobHandler interface {
	HandleJob(ctx context.Context, job repository.Job) error
}

// ExportHandler processes one analytics export job. Satisfied by
// *usecase.SnapshotExporter; kept as its own narrow interface so this
// package doesn't need to import usecase.
type ExportHandler interface {
	HandleJob(ctx context.Context, job repository.Job) error
}

// WorkerPoolConfig holds configuration for WorkerPool.
type WorkerPoolConfig struct {
	// Concurrency is the number of goroutines independently consuming
	// from the queue. Zero or negative means DefaultConcurrency().
	Concurrency int
}

// DefaultConcurrency returns one worker per CPU core, minimum 2.
func DefaultConcurrency() int {
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	return n
}

// WorkerPool runs N goroutines, each independently consuming jobs from
// the queue and dispatching them by Kind. ExportSnapshot jobs route to
// the exporter; every other kind routes to the pipeline orchestrator.
type WorkerPool struct {
	queue        repository.MessageQueue
	orchestrator JobHandler
	exporter     ExportHandler
	concurrency  int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool.
func NewWorkerPool(queue repository.MessageQueue, orchestrator JobHandler, exporter ExportHandler, cfg WorkerPoolConfig) *WorkerPool {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency()
	}
	return &WorkerPool{
		queue:        queue,
		orchestrator: orchestrator,
		exporter:     exporter,
		concurrency:  concurrency,
	}
}

// Start spawns the worker goroutines. Each calls MessageQueue.Consume
// independently; the queue implementation is responsible for letting
// multiple concurrent consumers share its delivery stream.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("worker pool already started")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}

	slog.Info("worker pool started", "concurrency", p.concurrency)
	return nil
}

// Stop cancels every worker's context and waits for in-flight handlers
// to return.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	handler := func(job repository.Job) error {
		return p.handle(ctx, job)
	}

	err := p.queue.Consume(ctx, handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker consume loop exited", "worker_id", id, "error", err)
	}
}

func (p *WorkerPool) handle(ctx context.Context, job repository.Job) error {
	if job.Kind == repository.KindExportSnapshot {
		return p.exporter.HandleJob(ctx, job)
	}
	return p.orchestrator.HandleJob(ctx, job)
}
