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

package sendqueue_test

import (
	"context"
	"time"

	"github.com/klppl/irc-botcore/sendqueue"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Queue", func() {
	It("pushes and pops in FIFO order", func() {
		q := sendqueue.New(2, nil)
		Expect(q.Push("a")).To(BeTrue())
		Expect(q.Push("b")).To(BeTrue())

		ctx := context.Background()
		v, err := q.Pop(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal("a"))
	})

	It("drops the newest line and reports false when full", func() {
		q := sendqueue.New(1, nil)
		Expect(q.Push("a")).To(BeTrue())
		Expect(q.Push("b")).To(BeFalse())
		Expect(q.Len()).To(Equal(1))
	})

	It("Pop respects context cancellation", func() {
		q := sendqueue.New(1, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := q.Pop(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("reports depth and capacity", func() {
		q := sendqueue.New(5, nil)
		q.Push("x")
		Expect(q.Len()).To(Equal(1))
		Expect(q.Cap()).To(Equal(5))
	})
})
