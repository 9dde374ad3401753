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
	"net"
	"sync"
	"sync/atomic"

	liberr "github.com/zhangjinde/cerver/errors"
	errpool "github.com/zhangjinde/cerver/errors/pool"
	"github.com/zhangjinde/cerver/logger"
	"github.com/zhangjinde/cerver/service"
	"github.com/zhangjinde/cerver/socket"
	tcp "github.com/zhangjinde/cerver/socket/server/tcp"
)

// Balancer is the front-end load balancer (§3, "Balancer"): a display
// name, a policy tag, a fixed-length set of services, a statistics
// block, and the embedded server (accepts clients) that together
// implement the data flow client -> C6 -> C2 -> service, service -> C7
// -> C2 -> client.
type Balancer struct {
	name   string
	policy Policy
	cfg    Config
	log    logger.Logger

	registry *service.Registry
	selector *service.Selector
	Stats    Stats

	startMu  sync.Mutex
	running  bool
	teardown atomic.Bool
	baseCtx  context.Context
	cancel   context.CancelFunc

	server tcp.ServerTcp
}

// New constructs a Balancer for cfg's fixed set of services. Services
// are registered immediately (the registry is not populated
// incrementally in this implementation): the precondition "fully
// populated before start" is therefore automatically satisfied by the
// time New returns a non-error Balancer.
func New(cfg Config, log logger.Logger) (*Balancer, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		if le, ok := err.(liberr.Error); ok {
			return nil, le
		}
		return nil, liberr.UnknownError.Error(err)
	}
	if log == nil {
		log = logger.Nop()
	}

	reg := service.NewRegistry(len(cfg.Services))
	for _, sc := range cfg.Services {
		if _, rerr := reg.Register(sc.Address, sc.Port, sc.Name, sc.ReconnectWait); rerr != nil {
			return nil, rerr
		}
	}

	b := &Balancer{
		name:     cfg.Name,
		policy:   cfg.Policy,
		cfg:      cfg,
		log:      log,
		registry: reg,
		selector: service.NewSelector(reg),
	}
	return b, nil
}

// Name returns the balancer's display name.
func (b *Balancer) Name() string { return b.name }

// Policy returns the balancer's selection policy tag.
func (b *Balancer) Policy() Policy { return b.policy }

// Registry exposes the service registry, mainly for tests and
// diagnostics.
func (b *Balancer) Registry() *service.Registry { return b.registry }

// IsRunning reports whether Start has completed and Teardown has not
// yet run.
func (b *Balancer) IsRunning() bool {
	b.startMu.Lock()
	defer b.startMu.Unlock()
	return b.running
}

// Addr returns the balancer's bound listening address, or nil before
// Start has completed. Useful when Config.Listen.Address asks for an
// ephemeral port.
func (b *Balancer) Addr() net.Addr {
	if b.server == nil {
		return nil
	}
	return b.server.Addr()
}

// connectAll runs C4's connect routine for every registered service,
// synchronously and concurrently, returning once every attempt has
// settled. On success it spawns the egress read loop (C7) and arms
// nothing; on failure the service is left Unavailable and its error is
// collected in the returned pool so the caller can decide whether the
// startup failure is fatal and, if so, report every contributing cause
// rather than just the first or the last.
func (b *Balancer) connectAll(ctx context.Context) errpool.Pool {
	p := errpool.New()
	var wg sync.WaitGroup
	b.registry.Each(func(s *service.Service) {
		wg.Add(1)
		go func(s *service.Service) {
			defer wg.Done()
			if err := s.Connect(ctx); err != nil {
				b.log.Warning("service connect failed", logger.Fields{
					"service": s.Name(), "error": err.Error(),
				})
				p.Add(err)
				return
			}
			b.log.Info("service connected", logger.Fields{"service": s.Name()})
			b.spawnEgress(s)
		}(s)
	})
	wg.Wait()
	return p
}

// onWorking is called by a reconnect supervisor once it restores a
// service to WORKING; it re-spawns that service's egress loop.
func (b *Balancer) onWorking(s *service.Service) {
	b.log.Info("service reconnected", logger.Fields{"service": s.Name()})
	b.spawnEgress(s)
}

// armReconnect implements the C7/C8 handoff: a service just marked
// Disconnected gets a supervisor racing the balancer's own lifetime
// context, so Teardown's cancellation reaches it immediately instead of
// only being noticed on the next sleep/wake cycle.
func (b *Balancer) armReconnect(s *service.Service) {
	ctx := b.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	s.ArmReconnect(ctx, &b.teardown, b.onWorking)
}

// clientByFd looks up a live client ingress connection by its OS
// descriptor, as stashed in a packet header's sock_fd field by C6. A
// miss means the client disconnected while its request was in flight.
func (b *Balancer) clientByFd(fd uint32) (socket.Context, bool) {
	if b.server == nil {
		return nil, false
	}
	return b.server.Lookup(fd)
}
