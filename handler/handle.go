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

// Package handler implements the handler/dispatch substrate of spec.md
// §4.7: runtime load/unload/reload of handler modules, named-command
// registration, a global concurrency cap and per-handler task accounting.
package handler

import (
	"context"
	"time"

	"github.com/klppl/irc-botcore/ircmsg"
)

// ClientHandle is the only contract a handler module may rely on (spec.md
// §6). It is implemented by ircclient.Engine.
type ClientHandle interface {
	Nickname() string
	Prefix() string
	RequestTimeout() time.Duration

	// HasOwnerAccess reports whether prefix currently carries owner access.
	HasOwnerAccess(prefix string) bool
	// ExtractIdentity parses prefix into nick/ident@host.
	ExtractIdentity(prefix string) (nick, identAt string)
	// IsIgnored reports whether nick is on the ignore list.
	IsIgnored(nick string) bool

	Privmsg(ctx context.Context, target, text string) error
	SendRaw(ctx context.Context, line string) error
	Join(ctx context.Context, channel string) error
	Part(ctx context.Context, channel, reason string) error

	// RegisterCommand registers a named command on behalf of a handler.
	RegisterCommand(handlerName string, spec CommandSpec) error
}

// Invocation describes one dispatched command call.
type Invocation struct {
	Prefix  string
	Target  string // reply target: the channel, or the sender's nick for a DM
	Command string
	Args    []string
	Private bool // true when the PRIVMSG was sent directly to the bot, not a channel
}

// CommandFunc is a registered command's invocation function.
type CommandFunc func(ctx context.Context, handle ClientHandle, inv Invocation) error

// CommandSpec is a registered named command (spec.md §3).
type CommandSpec struct {
	Name    string
	Aliases []string
	Help    string
	Invoke  CommandFunc
}

// Module is a loadable handler unit (spec.md §3's HandlerModule). Beyond
// the named-command path, a Module is also the target of the broadcast
// dispatch described in spec.md §4.5/§9: every inbound JOIN, PART, NICK,
// KICK, QUIT and PRIVMSG is offered to each loaded module's matching
// callback, each call spawned and tracked as its own task per §4.7.
// Embedding BaseModule satisfies the broadcast callbacks with no-ops so a
// module need only override the ones it cares about.
type Module interface {
	// Name is the handler's stable, lowercase identifier.
	Name() string
	// Defaults returns the handler's declared config defaults, merged into
	// persisted config on load (spec.md §4.7).
	Defaults() map[string]interface{}
	// OnLoad is invoked once the handler's defaults have been merged, before
	// it is marked enabled. It may call handle.RegisterCommand.
	OnLoad(handle ClientHandle) error
	// OnUnload is invoked after the handler's commands have been removed
	// and before its in-flight tasks are cancelled. Errors are logged,
	// never fatal.
	OnUnload(handle ClientHandle) error

	// OnMessage is offered every inbound PRIVMSG, independent of and in
	// addition to any sigil-prefixed command dispatch.
	OnMessage(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
	// OnJoin is offered every inbound JOIN.
	OnJoin(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
	// OnPart is offered every inbound PART.
	OnPart(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
	// OnNick is offered every inbound NICK.
	OnNick(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
	// OnKick is offered every inbound KICK.
	OnKick(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
	// OnQuit is offered every inbound QUIT.
	OnQuit(ctx context.Context, handle ClientHandle, msg ircmsg.Message) error
}

// BaseModule provides no-op implementations of every broadcast callback so
// a Module implementation can embed it and override only the callbacks it
// needs (spec.md §9: on_join/on_part/on_nick/on_kick/on_quit are optional
// in practice, even though Module exposes them uniformly).
type BaseModule struct{}

func (BaseModule) OnMessage(context.Context, ClientHandle, ircmsg.Message) error { return nil }
func (BaseModule) OnJoin(context.Context, ClientHandle, ircmsg.Message) error    { return nil }
func (BaseModule) OnPart(context.Context, ClientHandle, ircmsg.Message) error    { return nil }
func (BaseModule) OnNick(context.Context, ClientHandle, ircmsg.Message) error    { return nil }
func (BaseModule) OnKick(context.Context, ClientHandle, ircmsg.Message) error    { return nil }
func (BaseModule) OnQuit(context.Context, ClientHandle, ircmsg.Message) error    { return nil }
