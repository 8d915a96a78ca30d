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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("state", func() {
	It("dedupes channels case-insensitively, preserving first-seen case", func() {
		s := newState("bot")
		s.rememberChannel("#Foo")
		s.rememberChannel("#foo")
		s.rememberChannel("#bar")
		Expect(s.channelList()).To(Equal([]string{"#Foo", "#bar"}))
	})

	It("forgets a channel case-insensitively", func() {
		s := newState("bot")
		s.rememberChannel("#Foo")
		s.forgetChannel("#foo")
		Expect(s.channelList()).To(BeEmpty())
	})

	It("reports the ignore set case-insensitively", func() {
		s := newState("bot")
		s.setIgnored("Mallory", true)
		Expect(s.isIgnored("mallory")).To(BeTrue())
		s.setIgnored("mallory", false)
		Expect(s.isIgnored("Mallory")).To(BeFalse())
	})
})

var _ = Describe("replyTarget", func() {
	It("replies to the channel for a channel message", func() {
		Expect(replyTarget("#general", "alice")).To(Equal("#general"))
	})

	It("replies to the sender for a direct message", func() {
		Expect(replyTarget("bot", "alice")).To(Equal("alice"))
	})
})
