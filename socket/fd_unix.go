//go:build unix

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
	"syscall"
)

// FdOf returns the kernel socket descriptor backing conn, read through
// syscall.RawConn.Control so no duplicate file descriptor is created (and
// none needs separate closing). It falls back to an allocated id for
// connection types that do not expose a raw fd (e.g. net.Pipe in tests).
func FdOf(conn net.Conn) uint32 {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return NextFd()
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return NextFd()
	}

	var fd uint32
	_ = raw.Control(func(f uintptr) {
		fd = uint32(f)
	})
	if fd == 0 {
		return NextFd()
	}
	return fd
}
