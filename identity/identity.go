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

// Package identity implements the owner/trust model of spec.md §3/§4.6:
// nick!ident@host parsing, password-gated first-use host binding and the
// owner-access check guarding privileged builtin commands.
package identity

import (
	"sort"
	"strings"
	"sync"
)

// Identity is a caller's prefix, split into its nick and ident@host parts.
type Identity struct {
	Nick     string
	IdentAt  string // "ident@host", empty if the prefix didn't parse cleanly
}

// Parse splits a raw IRC prefix ("nick!ident@host") into an Identity. A
// prefix lacking either the "!" or the "@" separator yields an empty
// IdentAt, which ExtractIdentity's callers must treat as a hard parse
// failure per spec.md §4.6.
func Parse(prefix string) Identity {
	bang := strings.IndexByte(prefix, '!')
	if bang < 0 {
		return Identity{Nick: prefix}
	}
	nick := prefix[:bang]
	rest := prefix[bang+1:]
	if !strings.Contains(rest, "@") {
		return Identity{Nick: nick}
	}
	return Identity{Nick: nick, IdentAt: rest}
}

// Record is an OwnerRecord (spec.md §3): a display nick, an optional
// password and a set of trusted ident@host strings.
type Record struct {
	Nick     string
	Password string
	Hosts    []string
}

// hasHost reports whether host matches one of r's trusted hosts under the
// equivalence in spec.md §3: case-insensitive, with a leading "~" on the
// ident portion treated as equivalent to no "~" at all.
func (r *Record) hasHost(host string) bool {
	for _, h := range r.Hosts {
		if equivalentHost(h, host) {
			return true
		}
	}
	return false
}

func equivalentHost(a, b string) bool {
	return normalizeIdentAt(a) == normalizeIdentAt(b)
}

func normalizeIdentAt(identAt string) string {
	identAt = strings.ToLower(identAt)
	at := strings.IndexByte(identAt, '@')
	if at < 0 {
		return identAt
	}
	ident := strings.TrimPrefix(identAt[:at], "~")
	return ident + "@" + identAt[at+1:]
}

func (r *Record) addHost(host string) bool {
	if r.hasHost(host) {
		return false
	}
	r.Hosts = append(r.Hosts, host)
	sort.Strings(r.Hosts)
	return true
}

// Persister writes the owner record set to durable storage. Implemented by
// config.Store; kept as a narrow interface so identity has no import-time
// dependency on the config package.
type Persister interface {
	PersistOwners(records map[string]Record) error
}

// Store is the in-memory owner registry, keyed by lowercased nick.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	persist Persister
}

// NewStore builds a Store from records already loaded from disk (e.g. at
// startup, before config.Loader hands off to the running client).
func NewStore(records map[string]Record, persist Persister) *Store {
	if records == nil {
		records = map[string]Record{}
	}
	cp := make(map[string]Record, len(records))
	for k, v := range records {
		cp[strings.ToLower(k)] = v
	}
	return &Store{records: cp, persist: persist}
}

// Lookup returns the owner record for nick, if any.
func (s *Store) Lookup(nick string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[strings.ToLower(nick)]
	return r, ok
}

// Authenticate implements the `auth <password>` builtin (spec.md §4.6): if
// id.IdentAt is empty, or no record exists for id.Nick, or the record's
// password doesn't match, authentication fails with no further detail, so
// callers cannot distinguish "unknown nick" from "wrong password". On
// success the host is bound and persisted before Authenticate returns true,
// making the bind transactional: a crash before persistence leaves no
// phantom bind.
func (s *Store) Authenticate(id Identity, password string) (bool, error) {
	if id.IdentAt == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(id.Nick)
	rec, ok := s.records[key]
	if !ok || rec.Password == "" || rec.Password != password {
		return false, nil
	}

	next := Record{Nick: rec.Nick, Password: rec.Password, Hosts: append([]string(nil), rec.Hosts...)}
	if !next.addHost(id.IdentAt) {
		return true, nil
	}
	snapshot := s.snapshotLocked()
	snapshot[key] = next
	if s.persist != nil {
		if err := s.persist.PersistOwners(snapshot); err != nil {
			return false, err
		}
	}
	s.records[key] = next
	return true, nil
}

// HasAccess implements the owner-access check of spec.md §4.6: id must
// parse cleanly, a record must exist for its nick, and the record's
// trusted-host set must contain id.IdentAt.
func (s *Store) HasAccess(id Identity) bool {
	if id.IdentAt == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[strings.ToLower(id.Nick)]
	if !ok || len(rec.Hosts) == 0 {
		return false
	}
	return rec.hasHost(id.IdentAt)
}

// Snapshot returns a copy of every owner record, keyed by lowercased nick.
func (s *Store) Snapshot() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() map[string]Record {
	cp := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		hosts := make([]string, len(v.Hosts))
		copy(hosts, v.Hosts)
		cp[k] = Record{Nick: v.Nick, Password: v.Password, Hosts: hosts}
	}
	return cp
}
