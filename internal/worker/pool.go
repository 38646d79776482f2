// Package worker provides background persistence for request metrics.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

const appendTimeout = 5 * time.Second

// Pool drains finished metrics records into the configured sink so request
// goroutines never wait on storage.
type Pool struct {
	sink ports.MetricsSink
	jobs chan domain.RequestMetrics
	log  *slog.Logger
	wg   sync.WaitGroup
}

// NewPool creates a pool with the given queue size. Call Start before
// submitting.
func NewPool(sink ports.MetricsSink, queueSize int, log *slog.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{sink: sink, jobs: make(chan domain.RequestMetrics, queueSize), log: log}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for rec := range p.jobs {
				p.persist(rec)
			}
		}()
	}
}

// Stop closes the queue and waits for queued records to be written.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a record without blocking; a full queue drops the record.
func (p *Pool) Submit(rec domain.RequestMetrics) {
	select {
	case p.jobs <- rec:
	default:
		p.log.Warn("metrics queue full, dropping record", "request_id", rec.RequestID)
	}
}

func (p *Pool) persist(rec domain.RequestMetrics) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := p.sink.Append(ctx, rec); err != nil {
		p.log.Warn("failed to persist metrics record", "request_id", rec.RequestID, "error", err)
	}
}
