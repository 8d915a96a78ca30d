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

package handler_test

import (
	"context"
	"time"

	. "github.com/klppl/irc-botcore/handler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// registeringHandle wraps fakeHandle but routes RegisterCommand to a real
// Registry, the way ircclient.Engine does in production.
type registeringHandle struct {
	fakeHandle
	reg *Registry
}

func (h registeringHandle) RegisterCommand(handlerName string, spec CommandSpec) error {
	return h.reg.RegisterCommand(handlerName, spec)
}

var _ = Describe("Example module", func() {
	It("registers and answers ping, then deregisters on unload", func() {
		persister := &fakePersister{enabled: map[string]bool{}}
		reg := NewRegistry(persister, 4, time.Second, nil)
		handle := registeringHandle{reg: reg}
		mod := NewExample()

		Expect(reg.Load(mod, handle)).To(Succeed())

		spec, owner, ok := reg.Lookup("ping")
		Expect(ok).To(BeTrue())
		Expect(owner).To(Equal("example"))
		Expect(spec.Invoke(context.Background(), handle, Invocation{Target: "alice", Command: "ping"})).To(Succeed())

		Expect(reg.Unload("example", handle)).To(Succeed())
		_, _, ok = reg.Lookup("ping")
		Expect(ok).To(BeFalse())
	})
})
