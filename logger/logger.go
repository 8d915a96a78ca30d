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

package logger

import (
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

type logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing to w (os.Stderr if nil) at the given level,
// with a component field set so every line can be traced back to its
// owning package.
func New(component string, lvl Level, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}

	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(lvl)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &logger{entry: base.WithField("component", component)}
}

func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logger) WithField(key string, val interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, val)}
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{entry: l.entry.WithFields(f)}
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

func (l *logger) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(lvl)
}

func (l *logger) GetLevel() Level {
	return l.entry.Logger.GetLevel()
}

func (l *logger) GetStdLogger(lvl Level) *log.Logger {
	return log.New(l.entry.WriterLevel(lvl), "", 0)
}

// Discard is a Logger that writes nowhere, useful for tests that don't
// care about log output but still need a non-nil Logger.
func Discard() Logger {
	return New("discard", InfoLevel, io.Discard)
}
