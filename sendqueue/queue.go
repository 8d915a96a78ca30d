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

// Package sendqueue is the bounded outbound FIFO feeding the connection
// writer loop. A full queue drops the newest line rather than blocking the
// producer, per spec.md §4.3/§5.
package sendqueue

import (
	"context"

	"github.com/klppl/irc-botcore/logger"
)

// DefaultMax is QUEUE_MAX from spec.md.
const DefaultMax = 100

// Queue is a single-producer-many/single-consumer bounded FIFO of raw
// protocol lines (without CRLF; the writer appends it).
type Queue struct {
	ch  chan string
	log logger.Logger
}

// New builds a Queue with the given capacity (DefaultMax if <= 0).
func New(capacity int, log logger.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultMax
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Queue{ch: make(chan string, capacity), log: log}
}

// Push enqueues line without blocking. If the queue is full the line is
// dropped and a warning is logged; Push never blocks the caller.
func (q *Queue) Push(line string) bool {
	select {
	case q.ch <- line:
		return true
	default:
		q.log.Warnf("send queue full (cap=%d), dropping line", cap(q.ch))
		return false
	}
}

// Pop blocks until a line is available or ctx is cancelled.
func (q *Queue) Pop(ctx context.Context) (string, error) {
	select {
	case line := <-q.ch:
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len reports the current queued-send depth, for the health/status
// builtin command.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap reports the configured maximum depth.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
