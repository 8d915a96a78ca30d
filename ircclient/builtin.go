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
	"fmt"
	"sort"
	"strings"

	"github.com/klppl/irc-botcore/handler"
	"github.com/klppl/irc-botcore/identity"
)

// ModuleFor lets the registry's `load`/`unload`/`reload` builtins resolve a
// handler name to its Module, since the registry itself only tracks
// modules it has already loaded. It also exposes the full discovered set
// so `plugins`/`health` can report disabled handlers too (spec.md §4.6).
// Implemented by whatever owns the set of discovered handler units
// (cmd/ircbotcore).
type ModuleFor interface {
	ModuleByName(name string) (handler.Module, bool)
	Names() []string
}

// SetModuleSource wires the lookup used by the load/reload builtins.
func (e *Engine) SetModuleSource(src ModuleFor) {
	e.moduleSource = src
}

// dispatchBuiltin implements spec.md §4.6. It returns true if inv.Command
// named a builtin, whether or not that builtin succeeded.
func (e *Engine) dispatchBuiltin(ctx context.Context, inv handler.Invocation) bool {
	switch inv.Command {
	case "auth":
		e.builtinAuth(ctx, inv)
	case "whoami":
		e.builtinWhoami(ctx, inv)
	case "plugins":
		e.builtinPlugins(ctx, inv)
	case "load":
		e.builtinLoad(ctx, inv)
	case "unload":
		e.builtinUnload(ctx, inv)
	case "reload":
		e.builtinReload(ctx, inv)
	case "say":
		e.builtinSay(ctx, inv)
	case "join":
		e.builtinJoin(ctx, inv)
	case "part":
		e.builtinPart(ctx, inv)
	case "health", "status":
		e.builtinHealth(ctx, inv)
	case "help":
		e.builtinHelp(ctx, inv)
	default:
		return false
	}
	return true
}

func (e *Engine) reply(ctx context.Context, inv handler.Invocation, text string) {
	_ = e.Privmsg(ctx, inv.Target, text)
}

// builtinAuth implements the `auth <password>` builtin. No information
// leak distinguishes "unknown nick" from "wrong password".
func (e *Engine) builtinAuth(ctx context.Context, inv handler.Invocation) {
	if !inv.Private {
		return
	}
	if len(inv.Args) != 1 {
		e.reply(ctx, inv, "usage: auth <password>")
		return
	}
	if e.idStore == nil {
		e.reply(ctx, inv, "authentication failed")
		return
	}
	ok, err := e.idStore.Authenticate(identity.Parse(inv.Prefix), inv.Args[0])
	if err != nil {
		e.log.WithError(err).Warnf("failed to persist auth bind")
		e.reply(ctx, inv, "authentication failed")
		return
	}
	if ok {
		e.reply(ctx, inv, "authenticated")
	} else {
		e.reply(ctx, inv, "authentication failed")
	}
}

func (e *Engine) builtinWhoami(ctx context.Context, inv handler.Invocation) {
	id := identity.Parse(inv.Prefix)
	if id.IdentAt == "" {
		e.reply(ctx, inv, fmt.Sprintf("%s: could not parse your host", id.Nick))
		return
	}
	var hosts []string
	if e.idStore != nil {
		if rec, ok := e.idStore.Lookup(id.Nick); ok {
			hosts = rec.Hosts
		}
	}
	access := e.HasOwnerAccess(inv.Prefix)
	e.reply(ctx, inv, fmt.Sprintf("%s (%s) known hosts: %s, owner access: %t",
		id.Nick, id.IdentAt, strings.Join(hosts, ", "), access))
}

func (e *Engine) builtinPlugins(ctx context.Context, inv handler.Invocation) {
	enabled, disabled := e.handlerNames()
	e.reply(ctx, inv, fmt.Sprintf("enabled: %s; disabled: %s",
		strings.Join(enabled, ", "), strings.Join(disabled, ", ")))
}

// handlerNames splits the full discovered handler set (from moduleSource)
// into enabled (loaded) and disabled (known but not loaded), per spec.md
// §4.6. Without a moduleSource, only the loaded set is known.
func (e *Engine) handlerNames() (enabled, disabled []string) {
	enabled = e.registry.Enabled()
	if e.moduleSource == nil {
		return enabled, nil
	}
	isEnabled := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		isEnabled[name] = true
	}
	for _, name := range e.moduleSource.Names() {
		if !isEnabled[name] {
			disabled = append(disabled, name)
		}
	}
	sort.Strings(disabled)
	return enabled, disabled
}

func (e *Engine) builtinLoad(ctx context.Context, inv handler.Invocation) {
	if len(inv.Args) != 1 {
		e.reply(ctx, inv, "usage: load <name>")
		return
	}
	name := inv.Args[0]
	mod, ok := e.lookupModule(name)
	if !ok {
		e.reply(ctx, inv, fmt.Sprintf("unknown handler %q", name))
		return
	}
	if err := e.registry.Load(mod, e); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("load %q failed: %s", name, err))
		return
	}
	e.reply(ctx, inv, fmt.Sprintf("loaded %q", name))
}

func (e *Engine) builtinUnload(ctx context.Context, inv handler.Invocation) {
	if len(inv.Args) != 1 {
		e.reply(ctx, inv, "usage: unload <name>")
		return
	}
	name := inv.Args[0]
	if err := e.registry.Unload(name, e); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("unload %q failed: %s", name, err))
		return
	}
	e.reply(ctx, inv, fmt.Sprintf("unloaded %q", name))
}

func (e *Engine) builtinReload(ctx context.Context, inv handler.Invocation) {
	if len(inv.Args) != 1 {
		e.reply(ctx, inv, "usage: reload <name>")
		return
	}
	name := inv.Args[0]
	mod, ok := e.lookupModule(name)
	if !ok {
		e.reply(ctx, inv, fmt.Sprintf("unknown handler %q", name))
		return
	}
	if err := e.registry.Reload(mod, e); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("reload %q failed: %s", name, err))
		return
	}
	e.reply(ctx, inv, fmt.Sprintf("reloaded %q", name))
}

func (e *Engine) lookupModule(name string) (handler.Module, bool) {
	if e.moduleSource == nil {
		return nil, false
	}
	return e.moduleSource.ModuleByName(name)
}

func (e *Engine) builtinSay(ctx context.Context, inv handler.Invocation) {
	if !e.HasOwnerAccess(inv.Prefix) {
		e.reply(ctx, inv, "permission denied")
		return
	}
	if len(inv.Args) < 2 {
		e.reply(ctx, inv, "usage: say <target> <text>")
		return
	}
	target := inv.Args[0]
	text := strings.Join(inv.Args[1:], " ")
	if err := e.Privmsg(ctx, target, text); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("say failed: %s", err))
	}
}

func (e *Engine) builtinJoin(ctx context.Context, inv handler.Invocation) {
	if !e.HasOwnerAccess(inv.Prefix) {
		e.reply(ctx, inv, "permission denied")
		return
	}
	if len(inv.Args) != 1 {
		e.reply(ctx, inv, "usage: join <channel>")
		return
	}
	if err := e.Join(ctx, inv.Args[0]); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("join failed: %s", err))
	}
}

func (e *Engine) builtinPart(ctx context.Context, inv handler.Invocation) {
	if !e.HasOwnerAccess(inv.Prefix) {
		e.reply(ctx, inv, "permission denied")
		return
	}
	if len(inv.Args) < 1 {
		e.reply(ctx, inv, "usage: part <channel> [reason]")
		return
	}
	reason := ""
	if len(inv.Args) > 1 {
		reason = strings.Join(inv.Args[1:], " ")
	}
	if err := e.Part(ctx, inv.Args[0], reason); err != nil {
		e.reply(ctx, inv, fmt.Sprintf("part failed: %s", err))
	}
}

func (e *Engine) builtinHealth(ctx context.Context, inv handler.Invocation) {
	snap := e.state.snapshot()
	enabled, disabled := e.handlerNames()
	e.reply(ctx, inv, fmt.Sprintf(
		"channels=%d secs_since_connect=%.0f secs_since_disconnect=%.0f queue_depth=%d handlers_enabled=%d handlers_disabled=%d",
		snap.ChannelCount, snap.SecsSinceConnect, snap.SecsSinceDisconnect, e.sendQ.Len(), len(enabled), len(disabled)))
}

func (e *Engine) builtinHelp(ctx context.Context, inv handler.Invocation) {
	cmds := e.registry.Commands()
	if len(inv.Args) == 1 {
		spec, ok := cmds[strings.ToLower(inv.Args[0])]
		if !ok {
			e.reply(ctx, inv, fmt.Sprintf("no such command %q", inv.Args[0]))
			return
		}
		e.reply(ctx, inv, fmt.Sprintf("%s (aliases: %s): %s", spec.Name, strings.Join(spec.Aliases, ", "), spec.Help))
		return
	}
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	e.reply(ctx, inv, fmt.Sprintf("commands: %s", strings.Join(names, ", ")))
}
