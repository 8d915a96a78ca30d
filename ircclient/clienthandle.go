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

package ircclient

import (
	"context"
	"time"

	"github.com/klppl/irc-botcore/handler"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircerr"
)

// Engine implements handler.ClientHandle: it is the only contract a
// handler module may rely on (spec.md §6).
var _ handler.ClientHandle = (*Engine)(nil)

func (e *Engine) Nickname() string             { return e.state.Nickname() }
func (e *Engine) Prefix() string                { return e.cfg.Prefix }
func (e *Engine) RequestTimeout() time.Duration { return e.cfg.RequestTimeout }

func (e *Engine) HasOwnerAccess(prefix string) bool {
	if e.idStore == nil {
		return false
	}
	return e.idStore.HasAccess(identity.Parse(prefix))
}

func (e *Engine) ExtractIdentity(prefix string) (nick, identAt string) {
	id := identity.Parse(prefix)
	return id.Nick, id.IdentAt
}

func (e *Engine) IsIgnored(nick string) bool {
	return e.state.isIgnored(nick)
}

func (e *Engine) RegisterCommand(handlerName string, spec handler.CommandSpec) error {
	return e.registry.RegisterCommand(handlerName, spec)
}

// SendRaw enqueues line directly, bypassing the rate gate entirely (used
// for protocol plumbing: NICK/USER/PONG/JOIN/PART as well as handler-level
// raw sends).
func (e *Engine) SendRaw(ctx context.Context, line string) error {
	if !e.sendQ.Push(line) {
		return ircerr.New(ircerr.CodeQueueOverflow, "send queue full, dropped %q", line)
	}
	return nil
}

// Privmsg acquires the per-target gate then the global gate (spec.md §4.2)
// before enqueueing.
func (e *Engine) Privmsg(ctx context.Context, target, text string) error {
	if err := e.limiter.Acquire(ctx, target); err != nil {
		return err
	}
	return e.SendRaw(ctx, "PRIVMSG "+target+" :"+text)
}

func (e *Engine) Join(ctx context.Context, channel string) error {
	return e.SendRaw(ctx, "JOIN "+channel)
}

func (e *Engine) Part(ctx context.Context, channel, reason string) error {
	if reason == "" {
		return e.SendRaw(ctx, "PART "+channel)
	}
	return e.SendRaw(ctx, "PART "+channel+" :"+reason)
}
