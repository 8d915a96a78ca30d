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

package handler

import "context"

// Example is a minimal Module: one "ping" command that replies "pong". It
// exists to exercise load/unload/reload end to end, standing in for the
// out-of-scope weather/seen/tell-style handlers named in spec.md's
// Non-goals. It takes no broadcast callbacks, relying on BaseModule's
// no-ops.
type Example struct {
	BaseModule
}

// NewExample returns an Example module.
func NewExample() *Example {
	return &Example{}
}

func (e *Example) Name() string { return "example" }

func (e *Example) Defaults() map[string]interface{} {
	return map[string]interface{}{"greeting": "pong"}
}

func (e *Example) OnLoad(handle ClientHandle) error {
	return handle.RegisterCommand(e.Name(), CommandSpec{
		Name:    "ping",
		Aliases: []string{"pingme"},
		Help:    "replies pong",
		Invoke: func(ctx context.Context, handle ClientHandle, inv Invocation) error {
			return handle.Privmsg(ctx, inv.Target, "pong")
		},
	})
}

func (e *Example) OnUnload(handle ClientHandle) error {
	return nil
}
