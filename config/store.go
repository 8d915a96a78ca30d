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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircerr"
	"github.com/klppl/irc-botcore/logger"
)

// Store is the durable configuration store of spec.md §4.8: a single file,
// guarded by a cross-process advisory lock, replaced atomically on write.
type Store struct {
	mu   sync.Mutex
	path string
	log  logger.Logger
}

// NewStore builds a Store backed by the file at path. The lock file lives
// alongside it at "<path>.lock"; its directory is created on first write if
// it doesn't already exist.
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{path: path, log: log}
}

// Read loads the current document. A missing file is treated as an empty
// mapping (spec.md §4.8) rather than an error. Read may be called without
// the write lock: callers may observe a prior consistent version.
func (s *Store) Read() (Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			var d Document
			d.applyDefaults()
			return d, nil
		}
		return Document{}, ircerr.Wrap(ircerr.CodePersistenceFailure, err, "read config %s", s.path)
	}
	d, err := unmarshalDocument(b)
	if err != nil {
		return Document{}, ircerr.Wrap(ircerr.CodePersistenceFailure, err, "parse config %s", s.path)
	}
	return d, nil
}

// mutate runs the read-lock-mutate-write-unlock protocol of spec.md §4.8.
// fn receives the current document and returns the desired next document;
// if the serialized result is unchanged from what was read, the write is
// skipped (every persist operation is idempotent).
func (s *Store) mutate(fn func(Document) Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "create config dir %s", dir)
		}
	}

	lk := flock.New(s.path + ".lock")
	if err := lk.Lock(); err != nil {
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "lock config %s", s.path)
	}
	defer func() { _ = lk.Unlock() }()

	before, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "read config %s", s.path)
	}

	cur, err := unmarshalDocument(before)
	if err != nil {
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "parse config %s", s.path)
	}

	next := fn(cur)
	out, err := marshalDocument(next)
	if err != nil {
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "serialize config %s", s.path)
	}

	if bytes.Equal(bytes.TrimSpace(before), bytes.TrimSpace(out)) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.tmp")
	if err != nil {
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "create temp file for %s", s.path)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "write temp file for %s", s.path)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "close temp file for %s", s.path)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return ircerr.Wrap(ircerr.CodePersistenceFailure, err, "replace config %s", s.path)
	}

	s.log.Debugf("persisted config %s", s.path)
	return nil
}

// PersistChannels normalises channels (trim, dedupe case-insensitively,
// preserve first-seen case and order) and persists them.
func (s *Store) PersistChannels(channels []string) error {
	norm := normalizeChannels(channels)
	return s.mutate(func(d Document) Document {
		d.Channels = norm
		return d
	})
}

func normalizeChannels(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// PersistOwners re-serialises the in-memory owner map. Implements
// identity.Persister so an identity.Store can call it directly.
func (s *Store) PersistOwners(records map[string]identity.Record) error {
	entries := make([]OwnerEntry, 0, len(records))
	for _, r := range records {
		hosts := append([]string(nil), r.Hosts...)
		sort.Strings(hosts)
		hosts = slices.Compact(hosts)
		entries = append(entries, OwnerEntry{Nick: r.Nick, Password: r.Password, Hosts: hosts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Nick < entries[j].Nick })

	return s.mutate(func(d Document) Document {
		d.OwnerNicks = entries
		return d
	})
}

// PersistHandlerEnabled sets plugins.<name>.enabled.
func (s *Store) PersistHandlerEnabled(name string, enabled bool) error {
	return s.mutate(func(d Document) Document {
		if d.Plugins == nil {
			d.Plugins = map[string]PluginEntry{}
		}
		entry := d.Plugins[name]
		entry.Enabled = enabled
		d.Plugins[name] = entry
		return d
	})
}

// MergeHandlerDefaults merges a handler's declared defaults into
// plugins.<name>: missing keys are added, existing keys preserved, and
// list-valued defaults are unioned by value (spec.md §4.7). A pre-existing
// non-mapping value is never coerced into a mapping.
func (s *Store) MergeHandlerDefaults(name string, defaults map[string]interface{}) error {
	return s.mutate(func(d Document) Document {
		if d.Plugins == nil {
			d.Plugins = map[string]PluginEntry{}
		}
		entry := d.Plugins[name]
		if entry.Extra == nil {
			entry.Extra = map[string]interface{}{}
		}
		for k, v := range defaults {
			existing, ok := entry.Extra[k]
			if !ok {
				entry.Extra[k] = v
				continue
			}
			entry.Extra[k] = mergeListUnion(existing, v)
		}
		d.Plugins[name] = entry
		return d
	})
}

// mergeListUnion unions two values by value when both are slices; any
// other combination preserves the existing value untouched.
func mergeListUnion(existing, incoming interface{}) interface{} {
	exList, exOk := existing.([]interface{})
	inList, inOk := incoming.([]interface{})
	if !exOk || !inOk {
		return existing
	}
	seen := make(map[interface{}]struct{}, len(exList))
	out := append([]interface{}(nil), exList...)
	for _, v := range exList {
		seen[v] = struct{}{}
	}
	for _, v := range inList {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
