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

// Package socket declares the minimal connection contract shared by every
// socket server implementation in this module (currently tcp) and by the
// handler functions they invoke per accepted connection.
package socket

import "net"

// Context is the handle a server gives its handler for one accepted
// connection. It is a thin net.Conn plus the stable routing tag the
// balancer stamps into outgoing packet headers.
type Context interface {
	net.Conn

	// Fd returns the OS-level socket descriptor backing this connection,
	// used as the routing tag carried in the packet header's sock_fd
	// field. Two live connections never share an Fd; a closed
	// connection's Fd may be reused by the kernel for a later one, so
	// callers must stop treating it as valid the moment the connection
	// closes.
	Fd() uint32

	// WithWriteLock runs fn with exclusive write access to the
	// underlying connection. A client's ingress connection can receive
	// responses routed back from several different back-ends (one
	// request in flight per hop of a round-robin sequence), so every
	// multi-write send to it — a splice's header-then-body pair — must
	// serialize against any other writer the same way.
	WithWriteLock(fn func(net.Conn) error) error
}

// HandlerFunc is invoked once per accepted connection, in its own
// goroutine, for as long as the connection stays open.
type HandlerFunc func(c Context)

// UpdateConnFunc lets a caller tweak a freshly accepted net.Conn (e.g.
// set deadlines, wrap in TLS) before it is handed to HandlerFunc. It may
// be nil.
type UpdateConnFunc func(c net.Conn)
