/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package semaphore wraps golang.org/x/sync/semaphore with a worker
// vocabulary (NewWorker/DeferWorker/DeferMain), used by the handler
// registry to enforce MAX_CONCURRENT_HANDLERS.
package semaphore

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore bounds concurrent workers to a fixed weight of 1 per worker.
type Semaphore interface {
	// NewWorker blocks until a slot is free or ctx is cancelled.
	NewWorker() error
	// NewWorkerTry attempts to acquire a slot without blocking.
	NewWorkerTry() bool
	// DeferWorker releases one previously acquired slot.
	DeferWorker()
	// DeferMain waits for every acquired slot to be released.
	DeferMain()
	// Weighted reports the configured capacity.
	Weighted() int64
}

type sem struct {
	ctx context.Context
	w   *semaphore.Weighted
	n   int64
}

// New builds a Semaphore of capacity n bound to ctx.
func New(ctx context.Context, n int64) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}
	if n < 1 {
		n = 1
	}

	return &sem{
		ctx: ctx,
		w:   semaphore.NewWeighted(n),
		n:   n,
	}
}

func (s *sem) NewWorker() error {
	return s.w.Acquire(s.ctx, 1)
}

func (s *sem) NewWorkerTry() bool {
	return s.w.TryAcquire(1)
}

func (s *sem) DeferWorker() {
	s.w.Release(1)
}

func (s *sem) DeferMain() {
	// Acquire the full weight to block until every outstanding worker has
	// released, then give it back so the semaphore remains usable.
	_ = s.w.Acquire(context.Background(), s.n)
	s.w.Release(s.n)
}

func (s *sem) Weighted() int64 {
	return s.n
}
