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
	"strings"
	"time"

	"github.com/klppl/irc-botcore/handler"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircmsg"
)

// handleMessage implements the event router of spec.md §4.5.
func (e *Engine) handleMessage(ctx context.Context, msg ircmsg.Message) {
	switch msg.Command {
	case "PING":
		token := "server"
		if msg.HasTrailing() {
			token = msg.Trailing
		} else if len(msg.Params) > 0 {
			token = msg.Params[0]
		}
		_ = e.SendRaw(ctx, "PONG :"+token)
		return
	case "001":
		e.registered.Store(true)
		e.state.recordConnect()
		go e.joinInitialChannels(ctx)
		return
	case "433":
		e.handleNickCollision(ctx)
		return
	case "JOIN":
		e.handleJoin(msg)
	case "PART":
		e.handlePart(msg)
	case "NICK":
		e.handleNick(msg)
	case "KICK":
		e.handleKick(msg)
	case "QUIT":
		// no per-channel membership tracked beyond the joined-channel list
	case "PRIVMSG":
		e.handlePrivmsg(ctx, msg)
		return
	default:
		return
	}
	e.broadcast(ctx, msg.Command, msg)
}

func (e *Engine) handleNickCollision(ctx context.Context) {
	next := e.state.Nickname() + "_"
	e.state.setNickname(next)
	_ = e.SendRaw(ctx, "NICK "+next)
}

func (e *Engine) joinInitialChannels(ctx context.Context) {
	for i, ch := range e.cfg.Channels {
		if i > 0 {
			select {
			case <-time.After(e.cfg.JoinDelay):
			case <-ctx.Done():
				return
			}
		}
		if err := e.Join(ctx, ch); err != nil {
			e.log.WithError(err).Warnf("failed to join %s", ch)
		}
	}
}

func (e *Engine) handleJoin(msg ircmsg.Message) {
	if len(msg.Params) == 0 {
		return
	}
	id := identity.Parse(msg.Prefix)
	if strings.EqualFold(id.Nick, e.state.Nickname()) {
		e.state.rememberChannel(msg.Params[0])
		if e.cfgStore != nil {
			_ = e.cfgStore.PersistChannels(e.state.channelList())
		}
	}
}

func (e *Engine) handlePart(msg ircmsg.Message) {
	if len(msg.Params) == 0 {
		return
	}
	id := identity.Parse(msg.Prefix)
	if strings.EqualFold(id.Nick, e.state.Nickname()) {
		e.state.forgetChannel(msg.Params[0])
		if e.cfgStore != nil {
			_ = e.cfgStore.PersistChannels(e.state.channelList())
		}
	}
}

func (e *Engine) handleNick(msg ircmsg.Message) {
	if len(msg.Params) == 0 {
		return
	}
	id := identity.Parse(msg.Prefix)
	if strings.EqualFold(id.Nick, e.state.Nickname()) {
		e.state.setNickname(msg.Params[0])
	}
}

func (e *Engine) handleKick(msg ircmsg.Message) {
	if len(msg.Params) < 2 {
		return
	}
	if strings.EqualFold(msg.Params[1], e.state.Nickname()) {
		e.state.forgetChannel(msg.Params[0])
		if e.cfgStore != nil {
			_ = e.cfgStore.PersistChannels(e.state.channelList())
		}
	}
}

// broadcast offers msg to every loaded handler module's matching callback
// (spec.md §4.5). Each call is spawned through Registry.Dispatch, so it is
// admitted by the concurrency semaphore, bounded by the handler timeout and
// tracked in that module's own task set until it completes or Unload
// cancels it (spec.md §3, §4.7).
func (e *Engine) broadcast(ctx context.Context, kind string, msg ircmsg.Message) {
	for _, mod := range e.registry.LoadedModules() {
		mod := mod
		var invoke func(context.Context) error
		switch kind {
		case "PRIVMSG":
			invoke = func(taskCtx context.Context) error { return mod.OnMessage(taskCtx, e, msg) }
		case "JOIN":
			invoke = func(taskCtx context.Context) error { return mod.OnJoin(taskCtx, e, msg) }
		case "PART":
			invoke = func(taskCtx context.Context) error { return mod.OnPart(taskCtx, e, msg) }
		case "NICK":
			invoke = func(taskCtx context.Context) error { return mod.OnNick(taskCtx, e, msg) }
		case "KICK":
			invoke = func(taskCtx context.Context) error { return mod.OnKick(taskCtx, e, msg) }
		case "QUIT":
			invoke = func(taskCtx context.Context) error { return mod.OnQuit(taskCtx, e, msg) }
		default:
			continue
		}
		if err := e.registry.Dispatch(ctx, mod.Name(), invoke); err != nil {
			e.log.WithError(err).Warnf("broadcast %s to %q", kind, mod.Name())
		}
	}
}

// handlePrivmsg implements spec.md §4.5(c): ignore check, sigil-prefixed
// builtin/registered command dispatch, then unconditional broadcast.
func (e *Engine) handlePrivmsg(ctx context.Context, msg ircmsg.Message) {
	id := identity.Parse(msg.Prefix)
	if e.state.isIgnored(id.Nick) {
		return
	}

	if len(msg.Params) > 0 && msg.HasTrailing() && strings.HasPrefix(msg.Trailing, e.cfg.Prefix) {
		body := strings.TrimPrefix(msg.Trailing, e.cfg.Prefix)
		fields := strings.Fields(body)
		if len(fields) > 0 {
			inv := handler.Invocation{
				Prefix:  msg.Prefix,
				Target:  replyTarget(msg.Params[0], id.Nick),
				Command: strings.ToLower(fields[0]),
				Args:    fields[1:],
				Private: !isChannel(msg.Params[0]),
			}
			if e.dispatchBuiltin(ctx, inv) {
				e.broadcast(ctx, "PRIVMSG", msg)
				return
			}
			if spec, owner, ok := e.registry.Lookup(inv.Command); ok {
				_ = e.registry.Dispatch(ctx, owner, func(taskCtx context.Context) error {
					return spec.Invoke(taskCtx, e, inv)
				})
			}
		}
	}

	e.broadcast(ctx, "PRIVMSG", msg)
}

// replyTarget resolves where a reply to a PRIVMSG should go: the channel
// the message was sent to, or the sender's nick for a direct message.
func replyTarget(target, senderNick string) string {
	if isChannel(target) {
		return target
	}
	return senderNick
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
