/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package supervisor implements the lifecycle owner of spec.md §4.9: start
// the connection engine, stop it in response to a signal or a caller's own
// Stop call, and wait for an orderly drain.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/klppl/irc-botcore/logger"
)

// StartFunc runs until ctx is cancelled or it fails on its own.
type StartFunc func(ctx context.Context) error

// StopFunc performs any additional teardown beyond cancelling ctx (closing
// a socket, draining a queue). Called once, after the start goroutine has
// returned.
type StopFunc func(ctx context.Context) error

// Supervisor owns one StartFunc/StopFunc pair and tracks whether it is
// running and for how long, mirroring the teacher's start/stop runner
// shape.
type Supervisor struct {
	mu      sync.Mutex
	start   StartFunc
	stop    StopFunc
	log     logger.Logger
	running bool
	startedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// New builds a Supervisor. Either function may be nil: with a nil start
// function Start reports an error; a nil stop function is skipped by Stop.
func New(start StartFunc, stop StopFunc, log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.Discard()
	}
	return &Supervisor{start: start, stop: stop, log: log}
}

// IsRunning reports whether Start has been called and Stop has not yet
// completed.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Uptime reports how long the supervisor has been running, zero if it
// isn't.
func (s *Supervisor) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// Start runs StartFunc in the background under a context derived from ctx.
// It returns once the start function has begun running; call Wait to block
// for its completion.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	if s.start == nil {
		s.mu.Unlock()
		return errNoStartFunc
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		err := s.start(runCtx)
		s.mu.Lock()
		s.runErr = err
		s.mu.Unlock()
	}()
	return nil
}

// Wait blocks until the start function has returned, after Stop (or
// external cancellation of the context passed to Start) has signalled it
// to do so.
func (s *Supervisor) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Stop cancels the running start function, waits for it to return, then
// runs StopFunc for any additional teardown (spec.md §4.9: "set stop flag,
// cancel engine, ... close the socket, exit").
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	_ = s.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if s.stop != nil {
		return s.stop(ctx)
	}
	return nil
}
