// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scrapbook

import (
	"context"
	"sync"
)

// WorkerPool runs a fixed number of goroutines that drain a queue of
// jobs. Batch tools use it to fan a list of inputs across workers without
// unbounded goroutine creation; the buffered queue provides backpressure
// when producers outrun the workers.
type WorkerPool struct {
	maxWorkers int
	jobs       chan func()
	wg         sync.WaitGroup
	ctx        context.Context
}

// NewWorkerPool starts maxWorkers goroutines draining a queue of queueSize
// buffered jobs. The pool stops accepting and executing work when ctx is
// cancelled.
func NewWorkerPool(ctx context.Context, maxWorkers, queueSize int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		jobs:       make(chan func(), queueSize),
		ctx:        ctx,
	}
	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			job()
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues a job, blocking while the queue is full. It returns the
// context error if the pool's context is cancelled before the job is
// accepted.
func (wp *WorkerPool) Submit(job func()) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close stops accepting jobs and waits for queued work to drain.
func (wp *WorkerPool) Close() {
	close(wp.jobs)
	wp.wg.Wait()
}
