//go:build linux

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

package splice

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// trySpliceFast moves exactly n bytes from src to dst using two
// splice(2) calls per chunk, relayed through an in-kernel pipe, so the
// data never crosses into userspace. It returns ok=false if either
// connection doesn't expose a raw fd (e.g. it isn't backed by a real
// socket), in which case the caller falls back to copyFallback.
//
// A partial result (sent < n, ok true) means a read or write hit a
// non-retryable error or EOF partway through; the caller treats that the
// same as a fallback-path short transfer.
func trySpliceFast(dst, src net.Conn, n int64) (sent int64, ok bool) {
	rawSrc, srcOk := asSyscallConn(src)
	rawDst, dstOk := asSyscallConn(dst)
	if !srcOk || !dstOk {
		return 0, false
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return 0, false
	}
	defer pr.Close()
	defer pw.Close()

	var total int64
	for total < n {
		remain := int(n - total)

		moved, merr := spliceInto(rawSrc, int(pw.Fd()), remain)
		if moved == 0 && merr == nil {
			// source EOF before the expected body arrived.
			return total, true
		}
		if merr != nil {
			return total, true
		}

		written, werr := spliceFrom(rawDst, int(pr.Fd()), moved)
		total += int64(written)
		if werr != nil || written != moved {
			return total, true
		}
	}

	return total, true
}

func asSyscallConn(c net.Conn) (syscall.RawConn, bool) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return nil, false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, false
	}
	return raw, true
}

// spliceInto moves up to max bytes from raw's fd into the pipe write end
// pfd, blocking (cooperatively, via the runtime poller) until the
// connection is readable.
func spliceInto(raw syscall.RawConn, pfd int, max int) (int, error) {
	var n int
	var serr error

	err := raw.Read(func(fd uintptr) bool {
		m, e := unix.Splice(int(fd), nil, pfd, nil, max, unix.SPLICE_F_MOVE|unix.SPLICE_F_NONBLOCK)
		if e == unix.EAGAIN {
			return false
		}
		n, serr = int(m), e
		return true
	})
	if err != nil {
		return n, err
	}
	return n, serr
}

// spliceFrom moves exactly total bytes from the pipe read end pfd into
// raw's fd, blocking (cooperatively) until the connection is writable.
func spliceFrom(raw syscall.RawConn, pfd int, total int) (int, error) {
	var written int

	for written < total {
		remain := total - written
		var n int
		var serr error

		err := raw.Write(func(fd uintptr) bool {
			m, e := unix.Splice(pfd, nil, int(fd), nil, remain, unix.SPLICE_F_MOVE|unix.SPLICE_F_NONBLOCK)
			if e == unix.EAGAIN {
				return false
			}
			n, serr = int(m), e
			return true
		})
		if err != nil {
			return written, err
		}
		if serr != nil {
			return written, serr
		}
		if n == 0 {
			return written, nil
		}
		written += n
	}

	return written, nil
}
