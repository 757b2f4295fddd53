package xfanout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ObserverPool delivers notices to observers on background goroutines so
// slow observers never stall an instrumented call path.
// Non-blocking design: drops notices if the buffer is full.
type ObserverPool struct {
	noticeCh  chan *Notice
	workers   int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closed    atomic.Bool
	dropped   atomic.Uint64
	processed atomic.Uint64
}

// NewObserverPool creates a pool for async observer notification.
// workers: number of dispatch goroutines (defaults to 4)
// bufferSize: capacity of the notice channel (defaults to 1000)
func NewObserverPool(ctx context.Context, workers, bufferSize int) *ObserverPool {
	if workers < 1 {
		workers = 4
	}
	if bufferSize < 1 {
		bufferSize = 1000
	}

	poolCtx, cancel := context.WithCancel(ctx)
	op := &ObserverPool{
		noticeCh: make(chan *Notice, bufferSize),
		workers:  workers,
		ctx:      poolCtx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		op.wg.Add(1)
		go op.worker()
	}

	return op
}

// Notify queues a notice for the given observers.
// Returns immediately; the notice is dropped when the buffer is full.
func (op *ObserverPool) Notify(n Notice, observers []Observer) {
	if len(observers) == 0 || op.closed.Load() {
		return
	}

	n.observers = make([]Observer, len(observers))
	copy(n.observers, observers)

	select {
	case op.noticeCh <- &n:
	default:
		op.dropped.Add(1)
	}
}

func (op *ObserverPool) worker() {
	defer op.wg.Done()
	for {
		select {
		case <-op.ctx.Done():
			// Drain remaining notices before exiting
			for {
				select {
				case n := <-op.noticeCh:
					if n != nil {
						dispatchNotice(n, n.observers)
						op.processed.Add(1)
					}
				default:
					return
				}
			}
		case n := <-op.noticeCh:
			if n != nil {
				dispatchNotice(n, n.observers)
				op.processed.Add(1)
			}
		}
	}
}

// dispatchNotice calls every observer for a single notice.
// An observer panic is swallowed so it cannot take down the caller.
func dispatchNotice(n *Notice, observers []Observer) {
	for _, obs := range observers {
		if obs == nil {
			continue
		}
		func() {
			defer func() {
				_ = recover()
			}()
			obs.OnNotice(*n)
		}()
	}
}

// Close gracefully shuts down the observer pool.
// Waits up to timeout for workers to finish processing queued notices.
func (op *ObserverPool) Close(timeout time.Duration) error {
	if op.closed.Swap(true) {
		return nil
	}

	op.cancel()

	done := make(chan struct{})
	go func() {
		op.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrObserverPoolShutdownTimeout
	}
}

// Stats returns current pool statistics.
func (op *ObserverPool) Stats() PoolStats {
	return PoolStats{
		Dropped:      op.dropped.Load(),
		Processed:    op.processed.Load(),
		ActiveEvents: len(op.noticeCh),
		Workers:      op.workers,
		BufferSize:   cap(op.noticeCh),
	}
}
