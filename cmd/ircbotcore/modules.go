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

package main

import "github.com/klppl/irc-botcore/handler"

// moduleSet is the fixed set of handler.Module implementations this binary
// ships with. It implements ircclient.ModuleFor so the `load`/`unload`/
// `reload` builtins can resolve a name to a Module.
type moduleSet struct {
	byName map[string]handler.Module
}

func newModuleSet(mods ...handler.Module) *moduleSet {
	m := &moduleSet{byName: make(map[string]handler.Module, len(mods))}
	for _, mod := range mods {
		m.byName[mod.Name()] = mod
	}
	return m
}

func (m *moduleSet) ModuleByName(name string) (handler.Module, bool) {
	mod, ok := m.byName[name]
	return mod, ok
}

// Names lists every discovered handler name, loaded or not, so callers can
// compute the disabled complement of registry.Enabled() (spec.md §4.6's
// `plugins`/`health` builtins).
func (m *moduleSet) Names() []string {
	out := make([]string, 0, len(m.byName))
	for name := range m.byName {
		out = append(out, name)
	}
	return out
}

// discoverAndLoad implements spec.md §4.7's discovery step over the
// compiled-in module set (a static Go binary has no directory of loadable
// handler units to enumerate; the module set stands in for it). For each
// module: an absent plugins.<name> entry is treated as enabled and its
// defaults recorded; an explicit "false" leaves it disabled; "true"
// enables it.
func discoverAndLoad(reg *handler.Registry, handle handler.ClientHandle, mods *moduleSet, enabled map[string]bool) []error {
	var errs []error
	for _, name := range mods.Names() {
		mod, _ := mods.ModuleByName(name)
		state, known := enabled[name]
		if known && !state {
			continue
		}
		if err := reg.Load(mod, handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
