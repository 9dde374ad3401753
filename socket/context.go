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

package socket

import (
	"net"
	"sync"
)

type ctx struct {
	net.Conn
	fd  uint32
	wmu sync.Mutex
}

// NewContext wraps conn into a Context, tagging it with fd as its stable
// routing identifier.
func NewContext(conn net.Conn, fd uint32) Context {
	return &ctx{Conn: conn, fd: fd}
}

func (c *ctx) Fd() uint32 {
	return c.fd
}

func (c *ctx) WithWriteLock(fn func(net.Conn) error) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return fn(c.Conn)
}

// fdAllocator hands out process-unique connection identifiers when the
// real OS descriptor cannot be recovered from a net.Conn (e.g. under a
// net.Pipe or a non-file-backed Conn in tests). Production TCP
// connections use FdOf instead, grounded on the real kernel descriptor.
type fdAllocator struct {
	mu   sync.Mutex
	next uint32
}

var allocator fdAllocator

// NextFd returns a fresh process-unique identifier, starting at 1.
func NextFd() uint32 {
	allocator.mu.Lock()
	defer allocator.mu.Unlock()
	allocator.next++
	return allocator.next
}
