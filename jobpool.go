// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import "sync"

// jobPool is a fixed-size pool of persistent worker goroutines used by
// OutStream to compress several blocks concurrently. Grounded on
// mlz_thread.c's mlz_jobs_* family: mlz_jobs_create spins up num_threads
// worker threads, each blocked on its own auto-reset event;
// mlz_jobs_prepare_batch(n) records how many workers the next round will
// use; mlz_jobs_enqueue hands a job to the first idle worker and signals
// its event; mlz_jobs_wait blocks on a shared "queue done" event that the
// last worker to finish sets. The Go translation keeps worker threads
// long-lived (not spawned per batch, unlike errgroup.Group) and replaces
// the platform event/mutex/thread primitives with per-worker buffered
// channels, a sync.Mutex-guarded counter and a done channel that is
// recreated each batch.
type jobPool struct {
	mu     sync.Mutex
	wake   []chan struct{}
	busy   []bool
	jobs   []func()
	active int
	done   chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// newJobPool starts workers persistent goroutines, mirroring
// mlz_jobs_create.
func newJobPool(workers int) *jobPool {
	p := &jobPool{
		wake: make([]chan struct{}, workers),
		busy: make([]bool, workers),
		jobs: make([]func(), workers),
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	close(p.done) // no batch in flight yet
	for i := range p.wake {
		p.wake[i] = make(chan struct{}, 1)
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop(i)
	}
	return p
}

func (p *jobPool) workerLoop(i int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case <-p.wake[i]:
			job := p.jobs[i]
			p.jobs[i] = nil
			if job != nil {
				job()
			}
			p.mu.Lock()
			p.busy[i] = false
			p.active--
			if p.active == 0 {
				close(p.done)
			}
			p.mu.Unlock()
		}
	}
}

// prepareBatch records how many jobs the caller is about to enqueue,
// mirroring mlz_jobs_prepare_batch. Must be called once before the
// matching sequence of enqueue calls.
func (p *jobPool) prepareBatch(n int) {
	p.mu.Lock()
	p.active = n
	p.done = make(chan struct{})
	if n == 0 {
		close(p.done)
	}
	p.mu.Unlock()
}

// enqueue assigns job to the first idle worker, mirroring
// mlz_jobs_enqueue's linear scan for an inactive worker. Returns false
// if the pool has already been closed, or if every worker is already
// busy (callers size their batches to the pool's worker count, so the
// latter should not happen in practice).
func (p *jobPool) enqueue(job func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	for i := range p.busy {
		if !p.busy[i] {
			p.busy[i] = true
			p.jobs[i] = job
			p.mu.Unlock()
			p.wake[i] <- struct{}{}
			return true
		}
	}
	p.mu.Unlock()
	return false
}

// wait blocks until every job enqueued since the last prepareBatch has
// finished, mirroring mlz_jobs_wait.
func (p *jobPool) wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	<-done
}

// close stops every worker goroutine and waits for them to exit.
func (p *jobPool) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	close(p.stop)
	p.wg.Wait()
}
