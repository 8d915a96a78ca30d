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

package ircmsg_test

import (
	"strings"

	"github.com/klppl/irc-botcore/ircmsg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/require"
)

var _ = Describe("Parse", func() {
	It("splits prefix, command and params", func() {
		m := ircmsg.Parse(":nick!u@h PRIVMSG #chan :hello world")
		Expect(m.Prefix).To(Equal("nick!u@h"))
		Expect(m.Command).To(Equal("PRIVMSG"))
		Expect(m.Params).To(Equal([]string{"#chan"}))
		Expect(m.Trailing).To(Equal("hello world"))
		Expect(m.HasTrailing()).To(BeTrue())
	})

	It("handles lines without a prefix", func() {
		m := ircmsg.Parse("PING :abc")
		Expect(m.Prefix).To(BeEmpty())
		Expect(m.Command).To(Equal("PING"))
		Expect(m.Trailing).To(Equal("abc"))
	})

	It("handles lines without a trailing payload", func() {
		m := ircmsg.Parse("JOIN #chan")
		Expect(m.Command).To(Equal("JOIN"))
		Expect(m.Params).To(Equal([]string{"#chan"}))
		Expect(m.HasTrailing()).To(BeFalse())
	})

	It("delivers PRIVMSG with empty trailing as an empty-text event", func() {
		m := ircmsg.Parse(":n!u@h PRIVMSG #chan :")
		Expect(m.HasTrailing()).To(BeTrue())
		Expect(m.Trailing).To(Equal(""))
	})

	It("treats a bare colon right after the prefix as part of the command, not a trailing split", func() {
		m := ircmsg.Parse(":server :trailing")
		Expect(m.Prefix).To(Equal("server"))
		Expect(m.Command).To(Equal(":trailing"))
		Expect(m.Params).To(BeEmpty())
		Expect(m.Trailing).To(BeEmpty())
		Expect(m.HasTrailing()).To(BeFalse())
	})

	It("drops a CRLF-only line to an empty command", func() {
		m := ircmsg.Parse("\r\n")
		Expect(m.Command).To(BeEmpty())
	})

	It("never crashes on malformed UTF-8", func() {
		raw := "PRIVMSG #c :bad\xffbytes"
		Expect(func() { ircmsg.Parse(raw) }).ToNot(Panic())
	})

	It("round-trips conformant lines", func() {
		cases := []string{
			":nick!u@h PRIVMSG #chan :hello world",
			"PING :abc",
			"JOIN #chan",
			":srv 001 mybot :Welcome",
			"NICK newnick",
			":server :trailing",
		}
		for _, raw := range cases {
			m := ircmsg.Parse(raw)
			require.Equal(GinkgoT(), strings.TrimRight(raw, "\r\n"), strings.TrimRight(m.Encode(), "\r\n"))
		}
	})
})

var _ = Describe("Nick", func() {
	It("extracts the nick from a full prefix", func() {
		Expect(ircmsg.Nick("nick!ident@host")).To(Equal("nick"))
	})

	It("returns the prefix unchanged when there is no ident/host", func() {
		Expect(ircmsg.Nick("irc.server.example")).To(Equal("irc.server.example"))
	})
})
