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

package identity_test

import (
	"github.com/klppl/irc-botcore/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakePersister struct {
	calls []map[string]identity.Record
}

func (f *fakePersister) PersistOwners(records map[string]identity.Record) error {
	f.calls = append(f.calls, records)
	return nil
}

var _ = Describe("Parse", func() {
	It("splits nick, ident and host", func() {
		id := identity.Parse("alice!~alice@host.example.org")
		Expect(id.Nick).To(Equal("alice"))
		Expect(id.IdentAt).To(Equal("~alice@host.example.org"))
	})

	It("yields an empty IdentAt when there is no '!'", func() {
		id := identity.Parse("alice")
		Expect(id.Nick).To(Equal("alice"))
		Expect(id.IdentAt).To(BeEmpty())
	})

	It("yields an empty IdentAt when there is no '@'", func() {
		id := identity.Parse("alice!justident")
		Expect(id.IdentAt).To(BeEmpty())
	})
})

var _ = Describe("Store", func() {
	var persister *fakePersister

	BeforeEach(func() {
		persister = &fakePersister{}
	})

	Describe("Authenticate", func() {
		It("binds the host and persists on first successful auth", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Password: "hunter2"},
			}, persister)

			ok, err := store.Authenticate(identity.Parse("alice!ident@host.example.org"), "hunter2")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(persister.calls).To(HaveLen(1))

			rec, _ := store.Lookup("alice")
			Expect(rec.Hosts).To(ContainElement("ident@host.example.org"))
		})

		It("does not leak whether the nick is unknown or the password is wrong", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Password: "hunter2"},
			}, persister)

			okWrongPass, _ := store.Authenticate(identity.Parse("alice!ident@host"), "wrong")
			okUnknownNick, _ := store.Authenticate(identity.Parse("bob!ident@host"), "hunter2")
			Expect(okWrongPass).To(BeFalse())
			Expect(okUnknownNick).To(BeFalse())
			Expect(persister.calls).To(BeEmpty())
		})

		It("does not persist again once the host is already bound", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Password: "hunter2", Hosts: []string{"ident@host"}},
			}, persister)

			ok, _ := store.Authenticate(identity.Parse("alice!ident@host"), "hunter2")
			Expect(ok).To(BeTrue())
			Expect(persister.calls).To(BeEmpty())
		})

		It("fails hard when the prefix has no ident@host", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Password: "hunter2"},
			}, persister)
			ok, err := store.Authenticate(identity.Parse("alice"), "hunter2")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("HasAccess", func() {
		It("grants access when the current host is trusted", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Hosts: []string{"ident@host.example.org"}},
			}, persister)
			Expect(store.HasAccess(identity.Parse("alice!ident@host.example.org"))).To(BeTrue())
		})

		It("treats a leading '~' on the ident as equivalent to none", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Hosts: []string{"ident@host.example.org"}},
			}, persister)
			Expect(store.HasAccess(identity.Parse("alice!~ident@host.example.org"))).To(BeTrue())
		})

		It("is case-insensitive on the host", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Hosts: []string{"ident@Host.Example.ORG"}},
			}, persister)
			Expect(store.HasAccess(identity.Parse("alice!ident@host.example.org"))).To(BeTrue())
		})

		It("denies access with no trusted hosts at all", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Password: "hunter2"},
			}, persister)
			Expect(store.HasAccess(identity.Parse("alice!ident@host"))).To(BeFalse())
		})

		It("denies access for an unknown nick", func() {
			store := identity.NewStore(nil, persister)
			Expect(store.HasAccess(identity.Parse("mallory!ident@host"))).To(BeFalse())
		})
	})

	Describe("Snapshot", func() {
		It("returns an independent copy", func() {
			store := identity.NewStore(map[string]identity.Record{
				"alice": {Nick: "alice", Hosts: []string{"ident@host"}},
			}, persister)
			snap := store.Snapshot()
			snap["alice"].Hosts[0] = "mutated"

			rec, _ := store.Lookup("alice")
			Expect(rec.Hosts[0]).To(Equal("ident@host"))
		})
	})
})
