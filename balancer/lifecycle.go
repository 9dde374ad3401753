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

package balancer

import (
	"context"
	"time"

	liberr "github.com/zhangjinde/cerver/errors"
	"github.com/zhangjinde/cerver/logger"
	"github.com/zhangjinde/cerver/service"
	tcp "github.com/zhangjinde/cerver/socket/server/tcp"
)

// Start implements the balancer's startup sequence: connect every
// registered service (C4), then accept clients (C6) on the configured
// listening socket. Per §4.4 the reference policy requires at least one
// service to reach WORKING; cfg.RequireAllWorking tightens that to all
// of them. Start returns once the listening socket is bound or startup
// fails; it does not block for the balancer's lifetime.
func (b *Balancer) Start(ctx context.Context) liberr.Error {
	b.startMu.Lock()
	if b.running {
		b.startMu.Unlock()
		return ErrAlreadyStarted.Error(nil)
	}
	b.startMu.Unlock()

	if err := b.registry.RequireFull(); err != nil {
		return err
	}

	b.baseCtx, b.cancel = context.WithCancel(context.Background())

	connectErrs := b.connectAll(ctx)

	working := b.registry.CountWorking()
	if working == 0 {
		return ErrNoWorkingService.Error(connectErrs.Error())
	}
	if b.cfg.RequireAllWorking && working != b.registry.Capacity() {
		return ErrNoWorkingService.Error(connectErrs.Error())
	}

	srv, err := tcp.New(nil, b.ingress, b.cfg.Listen)
	if err != nil {
		if le, ok := err.(liberr.Error); ok {
			return le
		}
		return liberr.UnknownError.Error(err)
	}
	b.server = srv

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	// srv.Start blocks in its accept loop once listening succeeds; it
	// only returns early if the initial bind itself failed. Poll until
	// one of the two is observably true.
	for {
		select {
		case serr := <-errCh:
			if serr != nil {
				return liberr.UnknownError.Error(serr)
			}
			// accept loop already exited (e.g. ctx canceled instantly).
			return nil
		default:
		}
		if srv.IsRunning() {
			break
		}
		time.Sleep(time.Millisecond)
	}

	b.startMu.Lock()
	b.running = true
	b.startMu.Unlock()

	b.log.Info("balancer started", logger.Fields{
		"name": b.name, "policy": string(b.policy), "address": b.cfg.Listen.Address,
	})
	return nil
}

// Teardown implements C9: stop accepting new clients and close existing
// ingress connections first, then close every service's egress socket
// (a blocked egress read then returns an error and its loop exits).
// Registry and Stats are left in place. Teardown is idempotent and safe to
// call from a signal handler; a reconnect supervisor mid-sleep observes
// the teardown flag on wake and exits without reopening a socket.
func (b *Balancer) Teardown(ctx context.Context) liberr.Error {
	b.startMu.Lock()
	if !b.running {
		b.startMu.Unlock()
		return nil
	}
	b.running = false
	b.startMu.Unlock()

	b.teardown.Store(true)
	if b.cancel != nil {
		b.cancel()
	}

	if b.server != nil {
		_ = b.server.Close()
	}

	b.registry.Each(func(s *service.Service) {
		_ = s.Close()
	})

	b.log.Info("balancer torn down", logger.Fields{"name": b.name})
	return nil
}
