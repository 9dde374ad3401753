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
	"net"
	"strconv"
	"sync"

	"github.com/zhangjinde/cerver/duration"
	startStop "github.com/zhangjinde/cerver/runner/startStop"
)

// DefaultReconnectWait is used when a service is registered with a zero
// reconnect wait time.
const DefaultReconnectWait = duration.Duration(20 * 1_000_000_000) // 20s, in duration's underlying time.Duration units

// Service is one back-end instance fronted by the balancer: a fixed
// identity (its index, address, and display name) plus the mutable
// connection state the connector (C4), the egress dispatcher (C7, owned
// by the balancer package) and the reconnect supervisor (C8) all touch.
type Service struct {
	index         int
	address       string
	port          int
	name          string
	reconnectWait duration.Duration

	mu     sync.Mutex
	status Status
	conn   net.Conn
	armed  bool

	// writeMu serializes Forward calls from concurrent ingress handlers
	// that selected this same service, so a splice's header and body
	// writes from one caller never interleave with another's.
	writeMu sync.Mutex

	reconnectRunner startStop.Runner

	Counters Counters
}

// New builds a Service in status None. It is not yet connected; call
// Connect (directly, or through a Registry-driven startup loop) before
// it can be selected.
func New(index int, address string, port int, name string, reconnectWait duration.Duration) *Service {
	if reconnectWait <= 0 {
		reconnectWait = DefaultReconnectWait
	}
	if name == "" {
		name = net.JoinHostPort(address, strconv.Itoa(port))
	}
	return &Service{
		index:         index,
		address:       address,
		port:          port,
		name:          name,
		reconnectWait: reconnectWait,
	}
}

// Index returns the service's fixed position in the registry.
func (s *Service) Index() int { return s.index }

// Address returns the back-end's host address.
func (s *Service) Address() string { return s.address }

// Port returns the back-end's TCP port.
func (s *Service) Port() int { return s.port }

// Name returns the service's display name.
func (s *Service) Name() string { return s.name }

// ReconnectWait returns the delay the reconnect supervisor sleeps
// between attempts for this service.
func (s *Service) ReconnectWait() duration.Duration { return s.reconnectWait }

// Status returns the service's current lifecycle state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Conn returns the current egress connection, or nil if the service
// isn't Working. Callers in the egress read loop hold onto the net.Conn
// value they were started with instead of reloading this repeatedly, to
// avoid racing a concurrent reconnect that installs a new conn.
func (s *Service) Conn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Service) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// target formats the dial target for this service.
func (s *Service) target() string {
	return net.JoinHostPort(s.address, strconv.Itoa(s.port))
}
