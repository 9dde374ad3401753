/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package service

import (
	"context"
	"sync/atomic"
	"time"

	startStop "github.com/zhangjinde/cerver/runner/startStop"
)

// ArmReconnect implements C8: it starts a detached retry loop for a
// service that just transitioned to Disconnected, unless one is already
// running for it (arming is idempotent: callers arm after every
// MarkDisconnected, whether or not that call changed the status, and
// this armed guard is what keeps a single supervisor per service).
//
// The loop sleeps s.ReconnectWait(), then calls Connect; on failure it
// loops back to sleeping, on success it calls onReconnected and stops.
// teardown is checked both before sleeping and after waking, so a
// shutdown in progress is observed promptly instead of racing a
// reconnect attempt against closed sockets.
func (s *Service) ArmReconnect(parent context.Context, teardown *atomic.Bool, onReconnected func(*Service)) {
	s.mu.Lock()
	if s.armed {
		s.mu.Unlock()
		return
	}
	s.armed = true
	runner := startStop.New(s.reconnectLoop(teardown, onReconnected), nil)
	s.reconnectRunner = runner
	s.mu.Unlock()

	_ = runner.Start(parent)
}

// reconnectLoop builds the FuncStart driving one service's reconnect
// supervisor.
func (s *Service) reconnectLoop(teardown *atomic.Bool, onReconnected func(*Service)) startStop.FuncStart {
	return func(ctx context.Context) error {
		defer func() {
			s.mu.Lock()
			s.armed = false
			s.mu.Unlock()
		}()

		timer := time.NewTimer(s.reconnectWait.Time())
		defer timer.Stop()

		for {
			if teardown.Load() {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}

			if teardown.Load() {
				return nil
			}

			if err := s.Connect(ctx); err != nil {
				timer.Reset(s.reconnectWait.Time())
				continue
			}

			if onReconnected != nil {
				onReconnected(s)
			}
			return nil
		}
	}
}

// Armed reports whether a reconnect supervisor is currently running for
// this service.
func (s *Service) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
