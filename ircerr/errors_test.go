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

package ircerr_test

import (
	"errors"
	"fmt"

	"github.com/klppl/irc-botcore/ircerr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("renders its code and message", func() {
		err := ircerr.New(ircerr.CodeConfigError, "missing key %q", "server")
		Expect(err.Error()).To(ContainSubstring("ConfigError"))
		Expect(err.Error()).To(ContainSubstring(`missing key "server"`))
	})

	It("wraps a parent and exposes it via errors.Unwrap", func() {
		parent := fmt.Errorf("dial failed")
		err := ircerr.Wrap(ircerr.CodeTransportError, parent, "connect to irc.example.org")
		Expect(errors.Unwrap(err)).To(Equal(parent))
		Expect(err.Error()).To(ContainSubstring("dial failed"))
	})

	It("compares by code via Is", func() {
		a := ircerr.New(ircerr.CodeQueueOverflow, "dropped")
		b := ircerr.New(ircerr.CodeQueueOverflow, "different message")
		c := ircerr.New(ircerr.CodeHandlerFault, "dropped")
		Expect(errors.Is(a, b)).To(BeTrue())
		Expect(errors.Is(a, c)).To(BeFalse())
	})

	It("records a non-empty call-site trace", func() {
		err := ircerr.New(ircerr.CodePersistenceFailure, "write failed")
		Expect(err.Trace()).ToNot(BeEmpty())
	})
})
