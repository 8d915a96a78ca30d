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

// Package ircclient wires the line codec, rate gate, send queue, handler
// registry, identity store and config store into the connection engine
// and event router of spec.md §4.4-§4.6.
package ircclient

import (
	"strings"
	"sync"
	"time"
)

// state is ClientState (spec.md §3): runtime-only process state, mutated
// only by the event router and outbound helpers.
type state struct {
	mu             sync.RWMutex
	nickname       string
	channels       []string // lowercase-deduped, case preserved, insertion order
	lastConnect    time.Time
	lastDisconnect time.Time
	ignored        map[string]struct{}
}

func newState(nickname string) *state {
	return &state{nickname: nickname, ignored: map[string]struct{}{}}
}

func (s *state) Nickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nickname
}

func (s *state) setNickname(n string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nickname = n
}

func (s *state) rememberChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(channel)
	for _, c := range s.channels {
		if strings.ToLower(c) == key {
			return
		}
	}
	s.channels = append(s.channels, channel)
}

func (s *state) forgetChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(channel)
	for i, c := range s.channels {
		if strings.ToLower(c) == key {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			return
		}
	}
}

func (s *state) channelList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.channels))
	copy(out, s.channels)
	return out
}

func (s *state) recordConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastConnect = time.Now()
}

func (s *state) recordDisconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDisconnect = time.Now()
}

// Snapshot is a read-only view of state, used by the `health`/`status`
// builtin.
type Snapshot struct {
	Nickname           string
	ChannelCount       int
	SecsSinceConnect   float64
	SecsSinceDisconnect float64
}

func (s *state) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Nickname: s.nickname, ChannelCount: len(s.channels)}
	if !s.lastConnect.IsZero() {
		snap.SecsSinceConnect = time.Since(s.lastConnect).Seconds()
	}
	if !s.lastDisconnect.IsZero() {
		snap.SecsSinceDisconnect = time.Since(s.lastDisconnect).Seconds()
	}
	return snap
}

func (s *state) isIgnored(nick string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ignored[strings.ToLower(nick)]
	return ok
}

func (s *state) setIgnored(nick string, ignored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(nick)
	if ignored {
		s.ignored[key] = struct{}{}
	} else {
		delete(s.ignored, key)
	}
}
