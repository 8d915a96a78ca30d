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

package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klppl/irc-botcore/ircerr"
	"github.com/klppl/irc-botcore/logger"
	libsem "github.com/klppl/irc-botcore/semaphore"
)

// DefaultMaxConcurrent is MAX_CONCURRENT_HANDLERS (spec.md §4.7).
const DefaultMaxConcurrent = 100

// DefaultTimeout is HANDLER_TIMEOUT_SECS (spec.md §4.7).
const DefaultTimeout = 10 * time.Second

// ConfigPersister is the slice of config.Store the registry needs. Kept
// narrow so handler has no import-time dependency on the config package.
type ConfigPersister interface {
	PersistHandlerEnabled(name string, enabled bool) error
	MergeHandlerDefaults(name string, defaults map[string]interface{}) error
}

type commandEntry struct {
	spec    CommandSpec
	owner   string
	primary string
}

type moduleState struct {
	mu           sync.Mutex
	module       Module
	enabled      bool
	commandNames []string
	tasks        map[string]context.CancelFunc
}

// Registry is the handler/dispatch substrate of spec.md §4.7.
type Registry struct {
	mu        sync.RWMutex
	modules   map[string]*moduleState
	commands  map[string]*commandEntry // name (primary or alias) -> entry
	sem       libsem.Semaphore
	timeout   time.Duration
	persister ConfigPersister
	log       logger.Logger
}

// NewRegistry builds a Registry. maxConcurrent and timeout fall back to the
// spec defaults when non-positive.
func NewRegistry(persister ConfigPersister, maxConcurrent int, timeout time.Duration, log logger.Logger) *Registry {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		modules:   map[string]*moduleState{},
		commands:  map[string]*commandEntry{},
		sem:       libsem.New(context.Background(), int64(maxConcurrent)),
		timeout:   timeout,
		persister: persister,
		log:       log,
	}
}

// Load implements spec.md §4.7's load sequence: merge defaults, invoke
// on_load, mark enabled and persist.
func (r *Registry) Load(mod Module, handle ClientHandle) error {
	name := mod.Name()

	r.mu.Lock()
	if _, exists := r.modules[name]; exists {
		r.mu.Unlock()
		return ircerr.New(ircerr.CodeHandlerFault, "handler %q already loaded", name)
	}
	st := &moduleState{module: mod, tasks: map[string]context.CancelFunc{}}
	r.modules[name] = st
	r.mu.Unlock()

	if defaults := mod.Defaults(); len(defaults) > 0 && r.persister != nil {
		if err := r.persister.MergeHandlerDefaults(name, defaults); err != nil {
			r.unregisterModule(name)
			return ircerr.Wrap(ircerr.CodeHandlerFault, err, "merge defaults for %q", name)
		}
	}

	if err := mod.OnLoad(handle); err != nil {
		r.unregisterModule(name)
		return ircerr.Wrap(ircerr.CodeHandlerFault, err, "on_load %q", name)
	}

	st.mu.Lock()
	st.enabled = true
	st.mu.Unlock()

	if r.persister != nil {
		if err := r.persister.PersistHandlerEnabled(name, true); err != nil {
			return ircerr.Wrap(ircerr.CodeHandlerFault, err, "persist enabled flag for %q", name)
		}
	}
	return nil
}

// Unload implements spec.md §4.7's unload sequence.
func (r *Registry) Unload(name string, handle ClientHandle) error {
	r.mu.Lock()
	st, ok := r.modules[name]
	if !ok {
		r.mu.Unlock()
		return ircerr.New(ircerr.CodeHandlerFault, "handler %q not loaded", name)
	}
	delete(r.modules, name)
	for _, cmdName := range st.commandNames {
		delete(r.commands, cmdName)
	}
	r.mu.Unlock()

	if err := st.module.OnUnload(handle); err != nil {
		r.log.WithError(err).Warnf("on_unload %q returned an error", name)
	}

	st.mu.Lock()
	for _, cancel := range st.tasks {
		cancel()
	}
	st.tasks = map[string]context.CancelFunc{}
	st.mu.Unlock()

	if r.persister != nil {
		if err := r.persister.PersistHandlerEnabled(name, false); err != nil {
			return ircerr.Wrap(ircerr.CodeHandlerFault, err, "persist disabled flag for %q", name)
		}
	}
	return nil
}

// Reload unloads then loads mod. It does not re-read persisted config
// itself; the only file read is the one Load's defaults merge performs. If
// load fails after unload, the handler is left disabled and the error is
// returned.
func (r *Registry) Reload(mod Module, handle ClientHandle) error {
	name := mod.Name()
	if r.IsLoaded(name) {
		if err := r.Unload(name, handle); err != nil {
			return err
		}
	}
	return r.Load(mod, handle)
}

func (r *Registry) unregisterModule(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, name)
}

// IsLoaded reports whether name is currently loaded.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Enabled lists the names of loaded handlers, sorted. The registry does not
// track handlers that are known but not loaded.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for name := range r.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadedModules returns every currently loaded Module, for broadcast
// dispatch (spec.md §4.5): the caller offers each one the event via
// Dispatch, so the resulting task lands in that module's own task set.
func (r *Registry) LoadedModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, 0, len(r.modules))
	for _, st := range r.modules {
		out = append(out, st.module)
	}
	return out
}

// RegisterCommand fails if any provided name — primary or alias — is
// already registered by any handler (spec.md §4.7: the collision check is
// symmetric between primary names and aliases).
func (r *Registry) RegisterCommand(handlerName string, spec CommandSpec) error {
	if spec.Name == "" {
		return ircerr.New(ircerr.CodeHandlerFault, "command spec has no primary name")
	}
	primary := strings.ToLower(spec.Name)
	names := make([]string, 0, 1+len(spec.Aliases))
	names = append(names, primary)
	for _, a := range spec.Aliases {
		names = append(names, strings.ToLower(a))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.modules[handlerName]
	if !ok {
		return ircerr.New(ircerr.CodeHandlerFault, "handler %q is not loaded", handlerName)
	}

	for _, n := range names {
		if _, exists := r.commands[n]; exists {
			return ircerr.New(ircerr.CodeHandlerFault, "command name %q already registered", n)
		}
	}

	entry := &commandEntry{spec: spec, owner: handlerName, primary: primary}
	for _, n := range names {
		r.commands[n] = entry
	}

	st.mu.Lock()
	st.commandNames = append(st.commandNames, names...)
	st.mu.Unlock()
	return nil
}

// Lookup resolves a command by primary name or alias.
func (r *Registry) Lookup(name string) (CommandSpec, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return CommandSpec{}, "", false
	}
	return entry.spec, entry.owner, true
}

// Commands returns every distinct registered CommandSpec, keyed by primary
// name, for `.help`/`.plugins`-style introspection.
func (r *Registry) Commands() map[string]CommandSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string]CommandSpec{}
	for _, entry := range r.commands {
		out[entry.primary] = entry.spec
	}
	return out
}

// Dispatch runs fn as a new task owned by handlerName: it is admitted
// through the global concurrency semaphore, bounded by the registry's
// timeout and tracked in the handler's task set until it completes or is
// cancelled (spec.md §4.7). Dispatch returns once the task has been
// admitted and started; it does not wait for fn to finish.
func (r *Registry) Dispatch(ctx context.Context, handlerName string, fn func(context.Context) error) error {
	r.mu.RLock()
	st, ok := r.modules[handlerName]
	r.mu.RUnlock()
	if !ok {
		return ircerr.New(ircerr.CodeHandlerFault, "handler %q is not loaded", handlerName)
	}

	if err := r.sem.NewWorker(); err != nil {
		return ircerr.Wrap(ircerr.CodeHandlerFault, err, "admit task for %q", handlerName)
	}

	taskID := uuid.NewString()
	taskCtx, cancel := context.WithTimeout(ctx, r.timeout)

	st.mu.Lock()
	st.tasks[taskID] = cancel
	st.mu.Unlock()

	go func() {
		defer r.sem.DeferWorker()
		defer cancel()
		defer func() {
			st.mu.Lock()
			delete(st.tasks, taskID)
			st.mu.Unlock()
		}()

		err := fn(taskCtx)
		if taskCtx.Err() == context.DeadlineExceeded {
			r.log.Warnf("handler %q task %s timed out after %s", handlerName, taskID, r.timeout)
			return
		}
		if err != nil {
			r.log.WithError(err).Warnf("handler %q task %s returned an error", handlerName, taskID)
		}
	}()

	return nil
}

// TaskCount reports the number of in-flight tasks owned by handlerName.
func (r *Registry) TaskCount(handlerName string) int {
	r.mu.RLock()
	st, ok := r.modules[handlerName]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.tasks)
}
