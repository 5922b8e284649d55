// Package processing runs preview jobs on a fixed pool of goroutines so that
// staging a file never blocks the caller. Goroutines + a buffered channel are
// all the machinery it needs.
package processing

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/cinebook/internal/preview"
)

// ErrQueueFull is reported to a job's Done callback when it could not be
// queued.
var ErrQueueFull = errors.New("preview queue full")

// Source is anything a preview can be read from.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Job asks for the preview of one staged entry. Done is called exactly once,
// from a worker goroutine, or synchronously from Submit when the queue is full.
type Job struct {
	EntryID uuid.UUID
	Source  Source
	Done    func(preview string, err error)
}

// EncodeFunc produces a preview from file content.
type EncodeFunc func(r io.Reader, name string) (string, error)

// Processor consumes Jobs.
type Processor struct {
	queue   chan Job
	workers int
	encode  EncodeFunc
	logger  *slog.Logger
}

// Option customises a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for dropped and failed jobs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithEncoder replaces the default encoder, which inlines images up to
// preview.DefaultInlineLimit.
func WithEncoder(fn EncodeFunc) Option {
	return func(p *Processor) { p.encode = fn }
}

// New builds a Processor with queue capacity tied to worker count.
func New(workers int, opts ...Option) *Processor {
	if workers <= 0 {
		workers = 1
	}
	p := &Processor{
		queue:   make(chan Job, workers*16),
		workers: workers,
		encode:  preview.Encoder(preview.DefaultInlineLimit),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}
}

// Submit queues a job without blocking.
func (p *Processor) Submit(job Job) {
	select {
	case p.queue <- job:
	default:
		// A full buffer means the pool is saturated; the entry stays staged
		// without a preview instead of stalling the caller.
		p.logger.Warn("preview queue full, dropping job",
			slog.String("entry", job.EntryID.String()),
			slog.String("file", job.Source.Name()))
		job.Done("", ErrQueueFull)
	}
}

func (p *Processor) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			p.process(ctx, job)
		}
	}
}

func (p *Processor) process(ctx context.Context, job Job) {
	result, err := p.render(ctx, job.Source)
	if err != nil {
		p.logger.Warn("preview failed",
			slog.String("entry", job.EntryID.String()),
			slog.String("file", job.Source.Name()),
			slog.String("error", err.Error()))
	}
	job.Done(result, err)
}

func (p *Processor) render(ctx context.Context, src Source) (string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return p.encode(rc, src.Name())
}
