/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

package semaphore_test

import (
	"sync/atomic"
	"time"

	"github.com/klppl/irc-botcore/semaphore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Semaphore", func() {
	It("reports its configured capacity", func() {
		s := semaphore.New(globalCtx, 3)
		Expect(s.Weighted()).To(Equal(int64(3)))
	})

	It("defaults capacity to 1 when given a non-positive value", func() {
		s := semaphore.New(globalCtx, 0)
		Expect(s.Weighted()).To(Equal(int64(1)))
	})

	It("bounds concurrent workers to its capacity", func() {
		s := semaphore.New(globalCtx, 2)
		var inFlight int32
		var maxSeen int32
		done := make(chan struct{}, 6)

		for i := 0; i < 6; i++ {
			go func() {
				Expect(s.NewWorker()).To(Succeed())
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				s.DeferWorker()
				done <- struct{}{}
			}()
		}

		for i := 0; i < 6; i++ {
			<-done
		}
		Expect(atomic.LoadInt32(&maxSeen)).To(BeNumerically("<=", 2))
	})

	It("fails NewWorkerTry when no slot is free", func() {
		s := semaphore.New(globalCtx, 1)
		Expect(s.NewWorkerTry()).To(BeTrue())
		Expect(s.NewWorkerTry()).To(BeFalse())
		s.DeferWorker()
		Expect(s.NewWorkerTry()).To(BeTrue())
	})

	It("DeferMain blocks until every acquired worker is released", func() {
		s := semaphore.New(globalCtx, 1)
		Expect(s.NewWorker()).To(Succeed())

		released := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			s.DeferWorker()
			close(released)
		}()

		before := time.Now()
		s.DeferMain()
		Expect(time.Since(before)).To(BeNumerically(">=", 15*time.Millisecond))
		Eventually(released).Should(BeClosed())
	})
})
