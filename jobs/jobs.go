package jobs

import "sync"

// Handle tracks one background task. Wait blocks until the task finishes
// and returns its error; callers that never Wait simply drop the handle.
type Handle struct {
	done chan struct{}
	err  error
}

func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done reports completion without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Runner launches background tasks and can drain them at shutdown.
type Runner struct {
	wg sync.WaitGroup
}

func (r *Runner) Go(fn func() error) *Handle {
	h := &Handle{done: make(chan struct{})}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		h.err = fn()
		close(h.done)
	}()
	return h
}

// Wait blocks until every launched task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
