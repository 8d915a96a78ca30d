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

// Package ircmsg parses and emits single RFC-1459-style protocol lines.
package ircmsg

import (
	"strings"
	"unicode/utf8"
)

// Message is an inbound or outbound protocol line, decomposed per spec.
// Immutable after Parse.
type Message struct {
	Prefix   string
	Command  string
	Params   []string
	Trailing string
	hasTrail bool
}

// HasTrailing reports whether the line carried a " :" trailing payload,
// as opposed to simply having no trailing text at all.
func (m Message) HasTrailing() bool {
	return m.hasTrail
}

// Parse decodes a single raw line (without the terminating CRLF) into a
// Message. Invalid UTF-8 is replaced, never rejected.
func Parse(raw string) Message {
	raw = strings.TrimRight(raw, "\r\n")
	if !utf8.ValidString(raw) {
		raw = toValidUTF8(raw)
	}

	var msg Message

	if strings.HasPrefix(raw, ":") {
		sp := strings.IndexByte(raw, ' ')
		if sp < 0 {
			msg.Prefix = raw[1:]
			return msg
		}
		msg.Prefix = raw[1:sp]
		raw = raw[sp+1:]
	}

	var paramSection, trailing string
	if idx := strings.Index(raw, " :"); idx >= 0 {
		paramSection = raw[:idx]
		trailing = raw[idx+2:]
		msg.hasTrail = true
	} else {
		paramSection = raw
	}

	fields := strings.Fields(paramSection)
	if len(fields) > 0 {
		msg.Command = fields[0]
		msg.Params = fields[1:]
	}
	msg.Trailing = trailing

	return msg
}

// Encode reverses Parse, adding exactly one CRLF terminator. No
// server-side semantic validation is performed.
func (m Message) Encode() string {
	var b strings.Builder

	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}

	b.WriteString(m.Command)

	for _, p := range m.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	if m.hasTrail || m.Trailing != "" {
		b.WriteString(" :")
		b.WriteString(m.Trailing)
	}

	b.WriteString("\r\n")
	return b.String()
}

// Nick extracts the nickname portion of an IRC prefix ("nick!ident@host"
// or a bare nickname/server name).
func Nick(prefix string) string {
	if idx := strings.IndexByte(prefix, '!'); idx >= 0 {
		return prefix[:idx]
	}
	return prefix
}

func toValidUTF8(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}
