package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
)

const fallbackWriteTimeout = 10 * time.Second

// Dispatcher runs engine verifications in the background so submissions return immediately.
type Dispatcher struct {
	engine *Engine
	log    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(engine *Engine, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		engine: engine,
		log:    log.With("component", "VerificationDispatcher"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue schedules verification of the record. After Close the record is
// parked in manual review instead.
func (d *Dispatcher) Enqueue(id string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("dispatcher closed, sending record to manual review", "record_id", id)
		d.fallback(id, errors.New("verification dispatcher shut down"))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(id)
}

func (d *Dispatcher) run(id string) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("verification panicked", "record_id", id, "panic", r)
			d.fallback(id, fmt.Errorf("panic: %v", r))
		}
	}()

	_, err := d.engine.Verify(d.ctx, id)
	switch {
	case err == nil, errors.Is(err, ErrAlreadyDecided):
	default:
		d.log.Warn("verification run failed", "record_id", id, "error", err)
		d.fallback(id, err)
	}
}

func (d *Dispatcher) fallback(id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), fallbackWriteTimeout)
	defer cancel()
	if err := d.engine.Fallback(ctx, id, cause); err != nil {
		d.log.Error("manual review fallback failed, record left pending", "record_id", id, "error", err)
	}
}

// Wait blocks until every enqueued verification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting work and drains in-flight verifications. When ctx expires
// first the remaining runs are cancelled, which sends them to manual review.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
