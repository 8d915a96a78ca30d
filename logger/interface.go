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

// Package logger is a thin, level-aware structured logging facade over
// logrus, trimmed from nabbar-golib's much larger logger package down to
// the surface this bot actually needs.
package logger

import (
	"log"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' severity levels under names matching the rest of
// this codebase's vocabulary.
type Level = logrus.Level

const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// Fields is a typed alias for structured log fields.
type Fields = logrus.Fields

// FuncLog returns a Logger instance; used for dependency injection so
// packages never hold a concrete logrus reference.
type FuncLog func() Logger

// Logger is the surface handlers and core components depend on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(key string, val interface{}) Logger
	WithFields(f Fields) Logger
	WithError(err error) Logger

	SetLevel(lvl Level)
	GetLevel() Level

	// GetStdLogger returns a stdlib *log.Logger that writes through to
	// this Logger at the given level, for the rare dependency that wants
	// one (e.g. net/http servers).
	GetStdLogger(lvl Level) *log.Logger
}
