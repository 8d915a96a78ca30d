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

package logger_test

import (
	"bytes"
	"strings"

	"github.com/klppl/irc-botcore/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	It("writes the component field and message to the writer", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.InfoLevel, &buf)
		l.Infof("hello %s", "world")
		Expect(buf.String()).To(ContainSubstring("hello world"))
		Expect(buf.String()).To(ContainSubstring("component=test"))
	})

	It("filters below the configured level", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.InfoLevel, &buf)
		l.Debugf("should not appear")
		Expect(strings.TrimSpace(buf.String())).To(BeEmpty())
	})

	It("derives child loggers with extra fields without mutating the parent", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.InfoLevel, &buf)
		child := l.WithField("handler", "weather")
		child.Infof("loaded")
		Expect(buf.String()).To(ContainSubstring("handler=weather"))
	})
})
