package scheduler

import "sync"

// WorkerPool bounds how many sync units run at once. Units never share
// in-process state; all coordination happens through the database.
type WorkerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}

	return &WorkerPool{
		sem: make(chan struct{}, size),
	}
}

// Submit runs fn on its own goroutine once a worker slot is free.
func (p *WorkerPool) Submit(fn func()) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		fn()
	}()
}

// Wait blocks until every submitted unit has finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
