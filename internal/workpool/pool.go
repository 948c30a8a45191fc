// Package workpool runs request jobs on their own goroutines while capping how
// many run at once. Any free slot takes any job, so a slow request never
// holds up an unrelated one. Submit never blocks: once MaxPending jobs are
// accepted and unfinished, further submissions fail straight away.
package workpool

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is one unit of work, typically a single HTTP round trip.
type Job interface {
	Run(ctx context.Context) error
}

// Finisher is implemented by jobs with a step that must run after the job
// has given its slot back, such as handing a result to user code. Finish
// runs on the job's goroutine and is not part of what Stop waits for, so it
// may call back into the pool, including Stop.
type Finisher interface {
	Finish()
}

// Pool caps concurrent jobs at Config.Workers.
type Pool struct {
	cfg   Config
	slots chan struct{}

	mu      sync.Mutex
	closed  bool
	pending int
	idle    *sync.Cond
}

// New applies defaults to zero fields of cfg.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 16
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 1024
	}
	p := &Pool{
		cfg:   cfg,
		slots: make(chan struct{}, cfg.Workers),
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Submit accepts job and returns at once; the job waits for a slot on its
// own goroutine. It fails with ErrPoolClosed after Stop and with a
// *PoolFullError when MaxPending jobs are already unfinished.
//
// A job whose ctx is done by the time it gets a slot is not run; the error
// goes to Config.ErrorHandler and Finish still runs.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		rejectedTotal.WithLabelValues("closed").Inc()
		return ErrPoolClosed
	}
	if p.pending >= p.cfg.MaxPending {
		n := p.pending
		p.mu.Unlock()
		rejectedTotal.WithLabelValues("full").Inc()
		return &PoolFullError{Pending: n, Limit: p.cfg.MaxPending}
	}
	p.pending++
	pendingJobs.Inc()
	p.mu.Unlock()

	submissionsTotal.Inc()
	go p.run(ctx, job, time.Now())
	return nil
}

// Pending reports jobs accepted whose Run has not returned yet.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Stop rejects new jobs and returns once every accepted job's Run has
// returned. Finish steps may still be running. It is safe to call more than
// once and from inside a Finish step.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		log.Debug().Int("pending", p.pending).Msg("workpool: stopping")
	}
	for p.pending > 0 {
		p.idle.Wait()
	}
}

// Close implements io.Closer.
func (p *Pool) Close() error {
	p.Stop()
	return nil
}

func (p *Pool) run(ctx context.Context, job Job, accepted time.Time) {
	p.slots <- struct{}{}
	waitDuration.Observe(time.Since(accepted).Seconds())

	var err error
	if err = ctx.Err(); err == nil && job != nil {
		running.Inc()
		start := time.Now()
		err = p.execute(ctx, job)
		runDuration.Observe(time.Since(start).Seconds())
		running.Dec()
	}
	<-p.slots
	p.release()

	p.report(err)
	if f, ok := job.(Finisher); ok {
		p.finish(f)
	}
}

func (p *Pool) release() {
	p.mu.Lock()
	p.pending--
	pendingJobs.Dec()
	if p.pending == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}

func (p *Pool) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("workpool: job panic")
			err = &PanicError{Value: r}
		}
	}()
	return job.Run(ctx)
}

func (p *Pool) finish(f Finisher) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("workpool: finish panic")
		}
	}()
	f.Finish()
}

func (p *Pool) report(err error) {
	if err == nil || p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("workpool: error handler panic")
		}
	}()
	p.cfg.ErrorHandler(err)
}
