/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package ratelimit implements a sliding-window admission gate for the
// outbound send path: at most N admissions per W wall-clock seconds.
package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Gate enforces "at most N acquires per window of length W". Acquire is a
// cooperative, cancellable suspension point. Under contention each waiter
// sleeps on its own timer and retries independently, so the order in which
// concurrent waiters are admitted is not guaranteed to match call order.
type Gate struct {
	mu     sync.Mutex
	n      int
	window time.Duration
	admits *list.List // list of time.Time, oldest first
}

// New builds a Gate allowing n admissions per window.
func New(n int, window time.Duration) *Gate {
	if n < 1 {
		n = 1
	}
	return &Gate{
		n:      n,
		window: window,
		admits: list.New(),
	}
}

// Acquire blocks (cooperatively) until a slot is available, or ctx is
// cancelled. On cancellation no slot is reserved or consumed.
func (g *Gate) Acquire(ctx context.Context) error {
	for {
		wait, ok := g.tryAcquire(time.Now())
		if ok {
			return nil
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// tryAcquire attempts to admit now; on success it records the admission and
// returns (0, true). On failure it returns the duration the caller should
// wait before retrying.
func (g *Gate) tryAcquire(now time.Time) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := now.Add(-g.window)
	for e := g.admits.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(cutoff) {
			g.admits.Remove(e)
		}
		e = next
	}

	if g.admits.Len() < g.n {
		g.admits.PushBack(now)
		return 0, true
	}

	oldest := g.admits.Front().Value.(time.Time)
	wait := g.window - now.Sub(oldest)
	if wait < 0 {
		wait = 0
	}
	return wait, false
}

// Reconfigure replaces the (N, W) parameters and drops all recorded
// admissions, matching spec.md's "per-target map is reset when (N, W)
// parameters are reconfigured at runtime".
func (g *Gate) Reconfigure(n int, window time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n < 1 {
		n = 1
	}
	g.n = n
	g.window = window
	g.admits.Init()
}
