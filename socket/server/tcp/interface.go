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

// Package tcp is the generic TCP server runtime embedded by the balancer
// for its client-facing listening socket: accept loop, per-connection
// goroutine, open connection counting, and fd-keyed connection lookup.
// It applies no idle timeout.
//
// It knows nothing about packet framing or balancing; it hands each
// accepted connection to a socket.HandlerFunc and gets out of the way.
package tcp

import (
	"context"
	"net"

	"github.com/zhangjinde/cerver/socket"
	sckcfg "github.com/zhangjinde/cerver/socket/config"
)

// ServerTcp runs a TCP listener and dispatches accepted connections to a
// socket.HandlerFunc, one goroutine per connection.
type ServerTcp interface {
	// Start runs the accept loop until ctx is canceled or the listener
	// fails. It blocks; callers that want a background server run it in
	// its own goroutine (or through a runner/startStop.Runner).
	Start(ctx context.Context) error
	// Close closes the listener and every open connection. Idempotent.
	Close() error

	// IsRunning reports whether the accept loop is currently active.
	IsRunning() bool
	// IsGone reports whether the server has never started or has fully
	// stopped (listener closed, accept loop returned).
	IsGone() bool
	// OpenConnections returns the number of connections currently
	// accepted and not yet closed.
	OpenConnections() int64

	// Lookup returns the connection accepted with the given fd tag, if
	// it is still open. The balancer's egress handler uses this to
	// route a back-end's reply to the client that sent the request; a
	// miss (client disconnected meanwhile) is expected and not an error.
	Lookup(fd uint32) (socket.Context, bool)

	// Addr returns the listener's bound address, or nil before Start
	// has completed its bind. Useful when cfg.Address asks for an
	// ephemeral port (":0") and the caller needs to know what was
	// actually chosen.
	Addr() net.Addr
}

// New creates a ServerTcp bound to cfg.Address. updateConn, if non-nil, is
// called on every accepted net.Conn before it is wrapped and handed to
// handler.
func New(updateConn socket.UpdateConnFunc, handler socket.HandlerFunc, cfg sckcfg.Config) (ServerTcp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidAddress
	}

	if cfg.Backlog <= 0 {
		cfg.Backlog = sckcfg.DefaultBacklog
	}

	return &server{
		cfg:     cfg,
		update:  updateConn,
		handler: handler,
		conns:   make(map[uint32]socket.Context),
		gone:    true,
	}, nil
}
