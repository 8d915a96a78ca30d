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

package config_test

import (
	"os"
	"path/filepath"

	"github.com/klppl/irc-botcore/config"
	"github.com/klppl/irc-botcore/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var path string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "ircbotcore-config-*")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(dir) })
		path = filepath.Join(dir, "config.yaml")
	})

	It("treats a missing file as an empty document", func() {
		s := config.NewStore(path, nil)
		d, err := s.Read()
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Channels).To(BeEmpty())
	})

	It("persists and reloads the channel list, normalised", func() {
		s := config.NewStore(path, nil)
		Expect(s.PersistChannels([]string{"#Foo", " #bar", "#foo"})).To(Succeed())

		d, err := s.Read()
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Channels).To(Equal([]string{"#Foo", "#bar"}))
	})

	It("skips the write when the persisted value is unchanged", func() {
		s := config.NewStore(path, nil)
		Expect(s.PersistChannels([]string{"#foo"})).To(Succeed())

		info1, err := os.Stat(path)
		Expect(err).ToNot(HaveOccurred())

		Expect(s.PersistChannels([]string{"#foo"})).To(Succeed())
		info2, err := os.Stat(path)
		Expect(err).ToNot(HaveOccurred())

		Expect(info2.ModTime()).To(Equal(info1.ModTime()))
	})

	It("persists owner records re-serialised from the store", func() {
		s := config.NewStore(path, nil)
		Expect(s.PersistOwners(map[string]identity.Record{
			"alice": {Nick: "alice", Password: "x", Hosts: []string{"b@h", "a@h"}},
		})).To(Succeed())

		d, err := s.Read()
		Expect(err).ToNot(HaveOccurred())
		Expect(d.OwnerNicks).To(HaveLen(1))
		Expect(d.OwnerNicks[0].Hosts).To(Equal([]string{"a@h", "b@h"}))
	})

	It("persists a handler's enabled flag without disturbing others", func() {
		s := config.NewStore(path, nil)
		Expect(s.PersistHandlerEnabled("weather", true)).To(Succeed())
		Expect(s.PersistHandlerEnabled("reminder", false)).To(Succeed())

		d, err := s.Read()
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Plugins["weather"].Enabled).To(BeTrue())
		Expect(d.Plugins["reminder"].Enabled).To(BeFalse())
	})

	It("merges handler defaults without clobbering existing keys", func() {
		s := config.NewStore(path, nil)
		Expect(s.MergeHandlerDefaults("weather", map[string]interface{}{
			"units": "metric",
		})).To(Succeed())
		Expect(s.MergeHandlerDefaults("weather", map[string]interface{}{
			"units": "imperial",
			"city":  "Oslo",
		})).To(Succeed())

		d, err := s.Read()
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Plugins["weather"].Extra["units"]).To(Equal("metric"))
		Expect(d.Plugins["weather"].Extra["city"]).To(Equal("Oslo"))
	})
})
