// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
)

// ErrPipelineStopped indicates an ingest attempt after shutdown began.
var ErrPipelineStopped = errors.New("pipeline is stopped")

// PipelineConfig tunes the shared worker pool.
type PipelineConfig struct {
	Workers     int           `env:"WORKERS"      envDefault:"8"`
	QueueSize   int           `env:"QUEUE_SIZE"   envDefault:"256"`
	GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"10s"`
}

// Pipeline is the shared worker pool the gateway connections deliver raw
// messages into. Each message runs the pipeline stages sequentially on one
// worker; independent messages run concurrently.
type Pipeline struct {
	svc    Service
	cfg    PipelineConfig
	queue  chan RawMessage
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPipeline instantiates the message worker pool.
func NewPipeline(svc Service, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		svc:    svc,
		cfg:    cfg,
		queue:  make(chan RawMessage, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the workers. Calling Start on a running pipeline is a
// no-op.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	// Workers run detached from ctx: process shutdown cancels the caller's
	// context before the drain loop runs, and messages already pulled from
	// the bus must still reach the store. Stop cancels the worker context
	// once the drain finishes or the grace period expires.
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work(wctx)
	}
}

// Ingest queues one raw message for processing, blocking while the queue is
// full. After shutdown has begun messages are rejected.
func (p *Pipeline) Ingest(msg RawMessage) error {
	select {
	case <-p.done:
		return ErrPipelineStopped
	case p.queue <- msg:
		return nil
	}
}

// Stop drains in-flight messages already pulled from the bus within the
// configured grace period, then returns. It never blocks indefinitely.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()

	close(p.done)

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		if cancel != nil {
			cancel()
		}
		return nil
	case <-time.After(p.cfg.GracePeriod):
		if cancel != nil {
			cancel()
		}
		return errors.New("pipeline drain exceeded grace period")
	}
}

func (p *Pipeline) work(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case msg := <-p.queue:
			p.handle(ctx, msg)
		case <-p.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case msg := <-p.queue:
					p.handle(ctx, msg)
				default:
					return
				}
			}
		}
	}
}

// handle runs one message; errors are already recorded as failure events by
// the service, so the worker only traces them.
func (p *Pipeline) handle(ctx context.Context, msg RawMessage) {
	if err := p.svc.Handle(ctx, msg); err != nil {
		p.logger.Debug("message dropped", slog.String("topic", msg.Topic), slog.Any("error", err))
	}
}
