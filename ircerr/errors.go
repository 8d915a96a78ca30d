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

// Package ircerr implements the error taxonomy of spec.md §7: seven kinds
// of error, each carrying a stable numeric code, an optional parent error
// and the call site that raised it.
package ircerr

import (
	"fmt"
	"runtime"
)

// Code identifies one of the seven error kinds from spec.md §7.
type Code uint16

const (
	_ Code = iota
	CodeConfigError
	CodeTransportError
	CodeProtocolNoise
	CodeHandlerFault
	CodePermissionDenied
	CodeQueueOverflow
	CodePersistenceFailure
)

func (c Code) String() string {
	switch c {
	case CodeConfigError:
		return "ConfigError"
	case CodeTransportError:
		return "TransportError"
	case CodeProtocolNoise:
		return "ProtocolNoise"
	case CodeHandlerFault:
		return "HandlerFault"
	case CodePermissionDenied:
		return "PermissionDenied"
	case CodeQueueOverflow:
		return "QueueOverflow"
	case CodePersistenceFailure:
		return "PersistenceFailure"
	default:
		return "Unknown"
	}
}

// Error is this repository's error type: a code, a message, an optional
// parent and the runtime frame that constructed it.
type Error struct {
	code   Code
	msg    string
	parent error
	frame  runtime.Frame
}

// New builds an Error of the given code and formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{
		code:  code,
		msg:   fmt.Sprintf(format, args...),
		frame: caller(),
	}
}

// Wrap builds an Error of the given code that carries parent as its cause.
func Wrap(code Code, parent error, format string, args ...interface{}) *Error {
	return &Error{
		code:   code,
		msg:    fmt.Sprintf(format, args...),
		parent: parent,
		frame:  caller(),
	}
}

func caller() runtime.Frame {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return runtime.Frame{}
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return runtime.Frame{File: file, Line: line, Function: name}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.parent != nil {
		return fmt.Sprintf("[%s] %s: %s", e.code, e.msg, e.parent.Error())
	}
	return fmt.Sprintf("[%s] %s", e.code, e.msg)
}

// Unwrap exposes the parent for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.parent
}

// Code returns the error's kind.
func (e *Error) Code() Code {
	return e.code
}

// Is reports whether target is an *Error carrying the same code, so
// callers can do `errors.Is(err, ircerr.New(ircerr.CodeTransportError, ""))`
// style comparisons via a sentinel of the right code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Trace renders "file#line" for the call site that raised the error.
func (e *Error) Trace() string {
	if e.frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s#%d", e.frame.File, e.frame.Line)
}
