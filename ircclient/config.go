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
	"strconv"
	"time"
)

// Config is the subset of config.Document the engine needs at construction
// time. Built by cmd/ircbotcore from a loaded config.Document.
type Config struct {
	Server   string
	Port     int
	UseTLS   bool
	Nickname string
	Username string
	Realname string
	Channels []string
	Prefix   string

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	RequestTimeout    time.Duration
	JoinDelay         time.Duration

	RateCount        int
	RateWindow       time.Duration
	TargetRateCount  int
	TargetRateWindow time.Duration

	QueueMax int
}

func (c Config) addr() string {
	return c.Server + ":" + strconv.Itoa(c.Port)
}
