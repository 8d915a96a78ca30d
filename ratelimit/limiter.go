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

package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter bundles the global PRIVMSG gate with a per-target map, as
// spec.md §4.2 requires: privmsg(target, text) acquires per-target first,
// then global.
type Limiter struct {
	mu         sync.Mutex
	globalN    int
	globalW    time.Duration
	targetN    int
	targetW    time.Duration
	global     *Gate
	perTarget  map[string]*Gate
}

// NewLimiter builds a Limiter from the global and per-target (N, W) pairs.
func NewLimiter(globalN int, globalW time.Duration, targetN int, targetW time.Duration) *Limiter {
	return &Limiter{
		globalN:   globalN,
		globalW:   globalW,
		targetN:   targetN,
		targetW:   targetW,
		global:    New(globalN, globalW),
		perTarget: make(map[string]*Gate),
	}
}

// Acquire clears the per-target gate for target, then the global gate.
func (l *Limiter) Acquire(ctx context.Context, target string) error {
	g := l.gateFor(target)
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	return l.global.Acquire(ctx)
}

func (l *Limiter) gateFor(target string) *Gate {
	key := strings.ToLower(target)

	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.perTarget[key]
	if !ok {
		g = New(l.targetN, l.targetW)
		l.perTarget[key] = g
	}
	return g
}

// Reconfigure updates both the global window and resets every per-target
// window to the new parameters, dropping recorded admissions as spec.md
// requires.
func (l *Limiter) Reconfigure(globalN int, globalW time.Duration, targetN int, targetW time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.globalN, l.globalW = globalN, globalW
	l.targetN, l.targetW = targetN, targetW
	l.global.Reconfigure(globalN, globalW)
	l.perTarget = make(map[string]*Gate)
}
