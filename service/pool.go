package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"
)

// Job is one unit of conversion work run on a pool worker.
type Job func(ctx context.Context, logger *zerolog.Logger) error

type poolTask struct {
	ctx    context.Context
	job    Job
	result chan error
}

// Pool runs conversion jobs on a fixed set of workers so at most
// maxConcurrent workbooks are decoded or rendered at once.
type Pool struct {
	logger        *zerolog.Logger
	maxConcurrent int

	mu        sync.RWMutex
	started   bool
	taskQueue chan *poolTask
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewPool(maxConcurrent int, logger *zerolog.Logger) *Pool {
	if logger == nil {
		logger = loggers.NullLogger
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Pool{logger: logger, maxConcurrent: maxConcurrent}
}

func (p *Pool) MaxConcurrent() int {
	return p.maxConcurrent
}

// StartUp launches the workers. Cancelling ctx stops them.
func (p *Pool) StartUp(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		p.logger.Warn().Msg("pool already started")
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.taskQueue = make(chan *poolTask, p.maxConcurrent*2)
	p.started = true

	for i := 0; i < p.maxConcurrent; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info().Int("workers", p.maxConcurrent).Msg("conversion pool started")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	workerLogger := p.logger.With().Int("worker", id).Logger()
	workerLogger.Debug().Msg("worker started")

	for {
		select {
		case <-p.ctx.Done():
			workerLogger.Debug().Msg("worker shutting down")
			return

		case task, ok := <-p.taskQueue:
			if !ok {
				workerLogger.Debug().Msg("task queue closed, worker exiting")
				return
			}

			var err error
			if task.ctx.Err() != nil {
				err = task.ctx.Err()
			} else {
				err = p.run(task, LoggerFrom(task.ctx, &workerLogger))
			}

			select {
			case task.result <- err:
			case <-task.ctx.Done():
			}
		}
	}
}

func (p *Pool) run(task *poolTask, logger *zerolog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Msgf("job panic: %v", r)
			err = util.MsgError("Job", fmt.Sprintf("panic: %v", r))
		}
	}()
	return task.job(task.ctx, logger)
}

// Do queues job and waits for its result, the caller's ctx or pool shutdown,
// whichever comes first.
func (p *Pool) Do(ctx context.Context, job Job) error {
	task := &poolTask{ctx: ctx, job: job, result: make(chan error, 1)}

	// the read lock keeps Shutdown from closing the queue mid-send
	p.mu.RLock()
	if !p.started {
		p.mu.RUnlock()
		return util.MsgError("Do", "pool not started - call StartUp() first")
	}
	poolCtx := p.ctx
	select {
	case p.taskQueue <- task:
	case <-ctx.Done():
		p.mu.RUnlock()
		return util.Error("Do", ctx.Err())
	case <-poolCtx.Done():
		p.mu.RUnlock()
		return util.MsgError("Do", "pool is shutting down")
	}
	p.mu.RUnlock()

	select {
	case err := <-task.result:
		return err
	case <-ctx.Done():
		return util.Error("Do", ctx.Err())
	case <-poolCtx.Done():
		return util.MsgError("Do", "pool was shut down")
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
// When ctx expires first the remaining jobs are cancelled.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		p.logger.Warn().Msg("pool not started, nothing to shutdown")
		return
	}
	p.started = false
	close(p.taskQueue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info().Msg("all workers finished gracefully")
	case <-ctx.Done():
		p.logger.Warn().Msg("shutdown timeout - cancelling remaining jobs")
		p.cancel()
		<-done
	}
	p.cancel()
	p.logger.Info().Msg("conversion pool shutdown complete")
}

type ctxLoggerKey struct{}

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// LoggerFrom returns the logger attached by WithLogger, or fallback.
func LoggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return fallback
}
