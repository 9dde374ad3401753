/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop provides a small, reusable start/stop/restart runner
// over a user function, used throughout this module to give every
// background loop (egress readers, reconnect supervisors, the ingress
// accept loop) the same lifecycle shape instead of hand-rolled
// goroutine/channel bookkeeping at each call site.
package startStop

import (
	"context"
	"time"
)

// FuncStart is run in its own goroutine when Start is called. It should
// block until ctx is done (or it fails); its return value becomes the
// runner's last error.
type FuncStart func(ctx context.Context) error

// FuncStop is run synchronously by Stop after the running context has
// been canceled, to perform any cleanup FuncStart cannot do for itself
// (e.g. closing a socket to unblock a pending read).
type FuncStop func(ctx context.Context) error

// Runner drives a FuncStart/FuncStop pair through a start/stop/restart
// lifecycle and tracks the errors and uptime observed along the way.
type Runner interface {
	// Start launches the start function in a new goroutine, unless the
	// runner is already running, in which case it is a no-op.
	Start(ctx context.Context) error
	// Stop cancels the running context and runs the stop function. It
	// is idempotent: calling Stop when not running is a no-op.
	Stop(ctx context.Context) error
	// Restart stops then starts the runner.
	Restart(ctx context.Context) error
	// IsRunning reports whether the start function is currently active.
	IsRunning() bool
	// Uptime returns how long the runner has been running, or zero if
	// it is not currently running.
	Uptime() time.Duration

	// ErrorsLast returns the most recently observed error, or nil.
	ErrorsLast() error
	// ErrorsList returns every error observed since the runner was
	// created, oldest first.
	ErrorsList() []error
}

// New creates a Runner around the given start and stop functions. Either
// may be nil: a nil start function makes Start record an error instead of
// panicking, and a nil stop function is skipped by Stop without an error.
func New(start FuncStart, stop FuncStop) Runner {
	return &runner{
		fctStart: start,
		fctStop:  stop,
	}
}
